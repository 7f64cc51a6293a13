package cart

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// EncodeItems serializes the collection to the persisted JSON shape. The shape
// matches the browser client's localStorage payload: size is omitted entirely
// for unsized lines, never written as an empty string.
func EncodeItems(items []Item) []byte {
	var e jx.Encoder
	e.ArrStart()
	for _, it := range items {
		e.ObjStart()
		e.FieldStart("productId")
		e.Int64(it.ProductID)
		e.FieldStart("name")
		e.Str(it.Name)
		e.FieldStart("color")
		e.Str(it.Color)
		e.FieldStart("price")
		e.RawStr(it.Price.String())
		e.FieldStart("image")
		e.Str(it.Image)
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		if it.Size.Set {
			e.FieldStart("size")
			e.Str(it.Size.Label)
		}
		e.ObjEnd()
	}
	e.ArrEnd()
	return e.Bytes()
}

// DecodeItems parses a persisted collection. Any malformed input, including a
// line that violates the quantity invariant, is an error; callers treat that
// as "no saved cart".
func DecodeItems(data []byte) ([]Item, error) {
	d := jx.DecodeBytes(data)

	var items []Item
	if err := d.Arr(func(d *jx.Decoder) error {
		var it Item
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "productId":
				it.ProductID, err = d.Int64()
			case "name":
				it.Name, err = d.Str()
			case "color":
				it.Color, err = d.Str()
			case "price":
				it.Price, err = decodePrice(d)
			case "image":
				it.Image, err = d.Str()
			case "quantity":
				it.Quantity, err = d.Int()
			case "size":
				var label string
				label, err = d.Str()
				it.Size = SomeSize(label)
			default:
				err = d.Skip()
			}
			return err
		}); err != nil {
			return err
		}
		if it.Quantity < 1 {
			return errors.Errorf("line %d: quantity %d below 1", it.ProductID, it.Quantity)
		}
		items = append(items, it)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode cart")
	}
	return items, nil
}

// decodePrice accepts either a bare JSON number or a quoted decimal string.
func decodePrice(d *jx.Decoder) (decimal.Decimal, error) {
	n, err := d.Num()
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(strings.Trim(string(n), `"`))
}

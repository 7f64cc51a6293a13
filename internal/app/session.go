package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/velamoda/storefront/internal/catalog"
	"github.com/velamoda/storefront/internal/domain/cart"
	"github.com/velamoda/storefront/internal/domain/checkout"
	"github.com/velamoda/storefront/internal/domain/product"
	"github.com/velamoda/storefront/internal/transaction"
	"github.com/velamoda/storefront/pkg/health"
)

// SessionDeps are the collaborators the interactive session drives.
type SessionDeps struct {
	Catalog   product.Source
	Cart      *cart.Store
	Form      *checkout.Form
	Submitter *transaction.Submitter
	Watcher   *health.Watcher
	Logger    *zap.Logger
}

// Session is the line-oriented storefront frontend. It is intentionally thin:
// every rule lives in the domain packages, the session only renders state and
// dispatches commands.
type Session struct {
	deps SessionDeps
	in   io.Reader
	out  io.Writer

	// products is the last fetched listing, used to resolve add commands.
	products []product.Product
}

// NewSession creates a Session reading commands from in and printing to out.
func NewSession(deps SessionDeps, in io.Reader, out io.Writer) *Session {
	return &Session{deps: deps, in: in, out: out}
}

// Run processes commands until EOF, quit, or context cancellation.
func (s *Session) Run(ctx context.Context) error {
	s.printf("Bienvenido a la tienda. Escribe 'help' para ver los comandos.\n")
	if n := s.deps.Cart.TotalItems(); n > 0 {
		s.printf("Carrito restaurado: %d artículo(s).\n", n)
	}

	scanner := bufio.NewScanner(s.in)
	s.prompt()
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			s.prompt()
			continue
		}

		args := strings.Fields(line)
		if args[0] == "quit" || args[0] == "exit" {
			return nil
		}
		s.dispatch(ctx, args[0], args[1:])
		s.prompt()
	}
	return scanner.Err()
}

func (s *Session) dispatch(ctx context.Context, cmd string, args []string) {
	switch cmd {
	case "help":
		s.printHelp()
	case "products":
		s.cmdProducts(ctx)
	case "add":
		s.cmdAdd(args)
	case "remove":
		s.cmdRemove(args)
	case "qty":
		s.cmdQty(args)
	case "cart":
		s.cmdCart()
	case "open":
		s.deps.Cart.Open()
	case "close":
		s.deps.Cart.Close()
	case "clear":
		s.deps.Cart.Clear()
		s.printf("Carrito vaciado.\n")
	case "set":
		s.cmdSet(args)
	case "form":
		s.cmdForm()
	case "submit", "checkout":
		s.cmdSubmit(ctx)
	default:
		s.printf("Comando desconocido: %s\n", cmd)
	}
}

func (s *Session) cmdProducts(ctx context.Context) {
	products, err := s.deps.Catalog.List(ctx)
	if err != nil {
		s.deps.Logger.Warn("catalog fetch failed", zap.Error(err))
		var fetchErr *catalog.FetchError
		if errors.As(err, &fetchErr) {
			s.printf("No se pudo obtener el catálogo: %s\n", fetchErr.StatusText)
		} else {
			s.printf("No se pudo obtener el catálogo. Revisa tu conexión.\n")
		}

		fallback, fbErr := catalog.Fallback()
		if fbErr != nil {
			s.deps.Logger.Error("seed catalog unavailable", zap.Error(fbErr))
			return
		}
		s.printf("Mostrando el catálogo de demostración.\n")
		products = fallback
	}

	s.products = products
	for _, p := range products {
		avail := ""
		if !p.Available() {
			avail = " (agotado)"
		}
		s.printf("  [%d] %s — %s — $%s%s\n", p.ID, p.Name, p.Color, p.Price.StringFixed(2), avail)
	}
}

func (s *Session) cmdAdd(args []string) {
	if len(args) < 1 {
		s.printf("Uso: add <producto> [cantidad] [talla]\n")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		s.printf("Producto inválido: %s\n", args[0])
		return
	}

	var p *product.Product
	for i := range s.products {
		if s.products[i].ID == id {
			p = &s.products[i]
			break
		}
	}
	if p == nil {
		s.printf("Producto %d no encontrado. Ejecuta 'products' primero.\n", id)
		return
	}
	if !p.Available() {
		s.printf("%s está agotado.\n", p.Name)
		return
	}

	quantity := 1
	if len(args) > 1 {
		quantity, err = strconv.Atoi(args[1])
		if err != nil {
			s.printf("Cantidad inválida: %s\n", args[1])
			return
		}
	}
	size := cart.NoSize
	if len(args) > 2 {
		size = cart.SomeSize(args[2])
	}

	s.deps.Cart.Add(cart.Item{
		ProductID: p.ID,
		Name:      p.Name,
		Color:     p.Color,
		Price:     p.Price,
		Image:     p.Image,
		Quantity:  quantity,
		Size:      size,
	})
	s.printf("Agregado: %s (%s).\n", p.Name, p.Color)
}

func (s *Session) cmdRemove(args []string) {
	key, ok := s.lineKey(args, "remove")
	if !ok {
		return
	}
	s.deps.Cart.Remove(key)
}

func (s *Session) cmdQty(args []string) {
	if len(args) < 2 {
		s.printf("Uso: qty <línea> <cantidad>\n")
		return
	}
	key, ok := s.lineKey(args[:1], "qty")
	if !ok {
		return
	}
	quantity, err := strconv.Atoi(args[1])
	if err != nil {
		s.printf("Cantidad inválida: %s\n", args[1])
		return
	}
	s.deps.Cart.UpdateQuantity(key, quantity)
}

// lineKey resolves a 1-based cart line number to its identity key.
func (s *Session) lineKey(args []string, cmd string) (cart.Key, bool) {
	if len(args) < 1 {
		s.printf("Uso: %s <línea>\n", cmd)
		return cart.Key{}, false
	}
	n, err := strconv.Atoi(args[0])
	items := s.deps.Cart.Items()
	if err != nil || n < 1 || n > len(items) {
		s.printf("Línea inválida: %s\n", args[0])
		return cart.Key{}, false
	}
	return items[n-1].Key(), true
}

func (s *Session) cmdCart() {
	items := s.deps.Cart.Items()
	if len(items) == 0 {
		s.printf("El carrito está vacío.\n")
		return
	}
	for i, it := range items {
		size := ""
		if it.Size.Set {
			size = " - Talla: " + it.Size.Label
		}
		s.printf("  %d. %s (%s%s) x%d — $%s\n",
			i+1, it.Name, it.Color, size, it.Quantity, it.Subtotal().StringFixed(2))
	}
	s.printf("Total: %d artículo(s), $%s\n",
		s.deps.Cart.TotalItems(), s.deps.Cart.TotalPrice().StringFixed(2))
}

func (s *Session) cmdSet(args []string) {
	if len(args) < 1 {
		s.printf("Uso: set <campo> <valor>\n")
		return
	}
	value := strings.Join(args[1:], " ")

	switch checkout.Field(args[0]) {
	case checkout.FieldFullName:
		s.deps.Form.SetFullName(value)
	case checkout.FieldEmail:
		s.deps.Form.SetEmail(value)
	case checkout.FieldPhone:
		s.deps.Form.SetPhone(value)
	case checkout.FieldAddress:
		s.deps.Form.SetAddress(value)
	case checkout.FieldCity:
		s.deps.Form.SetCity(value)
	case checkout.FieldCountry:
		s.deps.Form.SetCountry(value)
	case checkout.FieldCardNumber:
		s.deps.Form.SetCardNumber(value)
	case checkout.FieldCardHolder:
		s.deps.Form.SetCardHolder(value)
	case checkout.FieldExpMonth:
		s.deps.Form.SetExpMonth(value)
	case checkout.FieldExpYear:
		s.deps.Form.SetExpYear(value)
	case checkout.FieldCVC:
		s.deps.Form.SetCVC(value)
	default:
		s.printf("Campo desconocido: %s\n", args[0])
		return
	}

	if msg := s.deps.Form.FieldError(checkout.Field(args[0])); msg != "" {
		s.printf("  ✗ %s\n", msg)
	}
}

func (s *Session) cmdForm() {
	v := s.deps.Form.Values()
	rows := []struct {
		field checkout.Field
		value string
	}{
		{checkout.FieldFullName, v.FullName},
		{checkout.FieldEmail, v.Email},
		{checkout.FieldPhone, v.Phone},
		{checkout.FieldAddress, v.Address},
		{checkout.FieldCity, v.City},
		{checkout.FieldCountry, v.Country},
		{checkout.FieldCardNumber, v.CardNumber},
		{checkout.FieldCardHolder, v.CardHolder},
		{checkout.FieldExpMonth, v.ExpMonth},
		{checkout.FieldExpYear, v.ExpYear},
		{checkout.FieldCVC, maskCVC(v.CVC)},
	}
	for _, row := range rows {
		mark := " "
		if msg := s.deps.Form.FieldError(row.field); msg != "" && s.deps.Form.Touched(row.field) {
			mark = "✗"
		}
		s.printf("  %s %-11s %s\n", mark, row.field+":", row.value)
	}
	if s.deps.Form.Valid() {
		s.printf("Formulario completo. Usa 'submit' para pagar.\n")
	} else {
		s.printf("Formulario incompleto: 'submit' está deshabilitado.\n")
	}
}

func (s *Session) cmdSubmit(ctx context.Context) {
	receipt, err := s.deps.Submitter.Submit(ctx, s.deps.Cart.Items(), s.deps.Form)
	if err != nil {
		s.printSubmitError(err)
		return
	}

	// Committed: only now do the cart and the saved draft go away.
	s.deps.Cart.Clear()
	s.deps.Form.ClearDraft()
	s.printf("¡Pago completado! Referencia: %s — Total $%s\n",
		receipt.RequestID, receipt.Total.StringFixed(2))
}

// printSubmitError renders the typed failure taxonomy. Cart contents and the
// form draft are always preserved for retry.
func (s *Session) printSubmitError(err error) {
	switch {
	case errors.Is(err, transaction.ErrEmptyCart):
		s.printf("El carrito está vacío.\n")
	case errors.Is(err, transaction.ErrInvalidForm):
		s.printf("Completa el formulario antes de pagar (usa 'form').\n")
	case errors.Is(err, transaction.ErrSubmissionInFlight):
		s.printf("Tu pago se está procesando, espera un momento.\n")
	default:
		var apiErr *transaction.APIError
		var connErr *transaction.ConnectivityError
		switch {
		case errors.As(err, &apiErr):
			s.printf("%s\n", apiErr.UserMessage())
		case errors.As(err, &connErr):
			s.printf("No hay conexión con el servidor de pagos. Revisa tu conexión e intenta de nuevo.\n")
		default:
			s.deps.Logger.Error("unexpected submission failure", zap.Error(err))
			s.printf("Ocurrió un error inesperado. Intenta de nuevo.\n")
		}
	}
}

func (s *Session) prompt() {
	status := ""
	if s.deps.Watcher != nil && !s.deps.Watcher.Healthy() {
		status = " [sin conexión]"
	}
	s.printf("tienda%s> ", status)
}

func (s *Session) printHelp() {
	s.printf(`Comandos:
  products              listar el catálogo
  add <id> [n] [talla]  agregar un producto al carrito
  cart                  ver el carrito
  qty <línea> <n>       cambiar cantidad (0 elimina la línea)
  remove <línea>        eliminar una línea
  open / close          abrir o cerrar el carrito
  clear                 vaciar el carrito
  set <campo> <valor>   llenar el formulario de pago
  form                  ver el formulario
  submit                completar el pedido
  quit                  salir
`)
}

func (s *Session) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}

func maskCVC(cvc string) string {
	return strings.Repeat("•", len(cvc))
}

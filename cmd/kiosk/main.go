package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/brewhouse/ordering/internal/client"
	"github.com/brewhouse/ordering/internal/domain/cart"
	"github.com/brewhouse/ordering/internal/domain/checkout"
	"github.com/brewhouse/ordering/internal/identity"
	"github.com/brewhouse/ordering/internal/kvstore"
)

const usage = `usage: kiosk [flags] <command> [args]

commands:
  menu                 list the menu
  add <item-id>        add one of an item to the cart
  qty <item-id> <n>    set an item's quantity (0 removes it)
  remove <item-id>     remove an item from the cart
  show                 show the cart with totals
  clear                empty the cart
  checkout [flags]     place the order (see checkout -h)
  orders               list your recent orders (requires login)
  login <token>        store a session token
  logout               forget the session token
`

func main() {
	var (
		serverURL string
		profile   string
	)

	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.StringVar(&serverURL, "server", "http://localhost:8080", "ordering server base URL")
	flag.StringVar(&profile, "profile", defaultProfileDir(), "directory for cart and session state")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, serverURL, profile, flag.Args()); err != nil {
		if errors.Is(err, context.Canceled) {
			// A checkout interrupted mid-flight may or may not have landed.
			fmt.Fprintln(os.Stderr, "interrupted: order status unknown, please check your orders")
			os.Exit(1)
		}
		slog.Error("kiosk failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func defaultProfileDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".brewhouse"
	}
	return filepath.Join(base, "brewhouse")
}

// cartLogger keeps the cart's fail-soft persistence warnings visible without
// drowning interactive output in debug noise.
func cartLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	lg, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return lg
}

func run(ctx context.Context, serverURL, profile string, args []string) error {
	kv, err := kvstore.NewFile(profile)
	if err != nil {
		return errors.Wrap(err, "open profile")
	}

	lg := cartLogger()
	defer func() { _ = lg.Sync() }()

	api := client.New(client.Config{BaseURL: serverURL})
	basket := cart.NewStore(kv, lg)

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "menu":
		return showMenu(ctx, api)
	case "add":
		if len(rest) != 1 {
			return errors.New("usage: kiosk add <item-id>")
		}
		return addItem(ctx, api, basket, rest[0])
	case "qty":
		if len(rest) != 2 {
			return errors.New("usage: kiosk qty <item-id> <n>")
		}
		n, err := strconv.Atoi(rest[1])
		if err != nil {
			return errors.Wrap(err, "parse quantity")
		}
		basket.UpdateQuantity(rest[0], n)
		return showCart(basket)
	case "remove":
		if len(rest) != 1 {
			return errors.New("usage: kiosk remove <item-id>")
		}
		basket.RemoveItem(rest[0])
		return showCart(basket)
	case "show":
		return showCart(basket)
	case "clear":
		basket.Clear()
		fmt.Println("cart cleared")
		return nil
	case "checkout":
		return runCheckout(ctx, api, basket, kv, lg, rest)
	case "orders":
		return showOrders(ctx, api, kv, lg)
	case "login":
		if len(rest) != 1 {
			return errors.New("usage: kiosk login <token>")
		}
		if err := kv.Set(identity.SessionSlotKey, []byte(rest[0])); err != nil {
			return errors.Wrap(err, "store session")
		}
		fmt.Println("logged in")
		return nil
	case "logout":
		if err := kv.Delete(identity.SessionSlotKey); err != nil {
			return errors.Wrap(err, "forget session")
		}
		fmt.Println("logged out")
		return nil
	default:
		return errors.Errorf("unknown command %q", cmd)
	}
}

func showMenu(ctx context.Context, api *client.Client) error {
	items, err := api.Menu(ctx)
	if err != nil {
		return errors.Wrap(err, "fetch menu")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPRICE\tCATEGORY")
	for _, item := range items {
		if !item.Available {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", item.ID, item.Title, item.Price, item.Category)
	}
	return w.Flush()
}

func addItem(ctx context.Context, api *client.Client, basket *cart.Store, itemID string) error {
	items, err := api.Menu(ctx)
	if err != nil {
		return errors.Wrap(err, "fetch menu")
	}

	for _, item := range items {
		if item.ID != itemID {
			continue
		}
		if !item.Available {
			return errors.Errorf("item %q is not available right now", itemID)
		}
		if err := basket.AddItem(item); err != nil {
			return errors.Wrap(err, "add item")
		}
		return showCart(basket)
	}
	return errors.Errorf("no menu item %q", itemID)
}

func showCart(basket *cart.Store) error {
	lines := basket.Lines()
	if len(lines) == 0 {
		fmt.Println("cart is empty")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tQTY\tUNIT\tLINE")
	for _, l := range lines {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n", l.ItemID, l.Title, l.Quantity, l.UnitPrice, l.UnitPrice*int64(l.Quantity))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	t := basket.Totals()
	fmt.Printf("\nsubtotal %d  tax %d  total %d\n", t.Subtotal, t.Tax, t.Total)
	return nil
}

func runCheckout(ctx context.Context, api *client.Client, basket *cart.Store, kv kvstore.Store, lg *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ExitOnError)
	var (
		name    = fs.String("name", "", "contact name (required)")
		phone   = fs.String("phone", "", "contact phone (required)")
		address = fs.String("address", "", "delivery or pickup address (required)")
		notes   = fs.String("notes", "", "order notes")
		dineIn  = fs.Bool("dine-in", false, "dine in instead of takeaway")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	form := checkout.Form{
		Name:    *name,
		Phone:   *phone,
		Address: *address,
		Notes:   *notes,
	}
	if *dineIn {
		form.Fulfillment = checkout.DineIn
	}

	orch := checkout.NewOrchestrator(basket, api, identity.NewTokenProvider(kv, lg), lg)
	orch.SetForm(form)

	ack, err := orch.Submit(ctx)
	if err != nil {
		var vErr *checkout.ValidationError
		if errors.As(err, &vErr) {
			return errors.Errorf("%s: %s", vErr.Field, vErr.Message)
		}
		return err
	}

	fmt.Printf("order placed: %s\n", ack.OrderID)
	if ack.Message != "" {
		fmt.Println(ack.Message)
	}
	return nil
}

func showOrders(ctx context.Context, api *client.Client, kv kvstore.Store, lg *zap.Logger) error {
	ident := identity.NewTokenProvider(kv, lg)
	id, ok := ident.CurrentIdentifier()
	if !ok {
		return errors.New("not logged in: run kiosk login <token> first")
	}

	orders, err := api.Orders(ctx, id)
	if err != nil {
		return errors.Wrap(err, "fetch orders")
	}
	if len(orders) == 0 {
		fmt.Println("no orders yet")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tTOTAL\tPLACED")
	for _, o := range orders {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", o.ID, o.Status, o.Total, o.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

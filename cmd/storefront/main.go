package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joshua-takyi/travelease/internal/models"
	"github.com/joshua-takyi/travelease/internal/storefront"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const usage = `usage: storefront [-config file] <command> [flags]

commands:
  packages  [-category all|domestic|international] [-search text] [-sort name|-price|...] [-page n] [-min n] [-max n]
  register  -first -last -email -password -phone -address
  login     -email -password
  logout
  whoami
  cart      add <packageId> | update <cartId> <qty> | remove <cartId> | clear | show [-tier id] [-promo code]
  checkout  [-tier id] [-promo code] [-date YYYY-MM-DD] [-notes text]
  bookings  [-status all|pending|confirmed|cancelled|completed]
  cancel    <bookingId>
  receipt   <bookingId> [-o file]
`

func main() {
	global := flag.NewFlagSet("storefront", flag.ExitOnError)
	configFile := global.String("config", "", "config file (yaml, json or toml)")
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	_ = global.Parse(os.Args[1:])

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	if err := loadConfig(*configFile); err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	args := global.Args()
	if len(args) == 0 {
		global.Usage()
		os.Exit(2)
	}

	store, err := openStorage(viper.GetString("data_dir"))
	if err != nil {
		logger.Error("Failed to open local storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	client := storefront.NewClient(viper.GetString("api_url"), nil)
	sess, err := storefront.NewSession(store, client)
	if err != nil {
		logger.Error("Failed to load session", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), viper.GetDuration("timeout"))
	defer cancel()

	if err := run(ctx, sess, client, args[0], args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		store.Close()
		os.Exit(1)
	}
}

// loadConfig reads STOREFRONT_* environment variables and an optional config
// file. A missing default config file is not an error.
func loadConfig(file string) error {
	home, _ := os.UserHomeDir()
	viper.SetDefault("api_url", "http://localhost:3000/api")
	viper.SetDefault("data_dir", filepath.Join(home, ".travelease"))
	viper.SetDefault("timeout", 15*time.Second)

	viper.SetEnvPrefix("storefront")
	viper.AutomaticEnv()

	if file != "" {
		viper.SetConfigFile(file)
		return viper.ReadInConfig()
	}
	viper.SetConfigName("storefront")
	viper.AddConfigPath(".")
	viper.AddConfigPath(viper.GetString("data_dir"))
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}
	return nil
}

func openStorage(dir string) (*storefront.BadgerStorage, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return storefront.OpenBadgerStorage(filepath.Join(dir, "state"))
}

func run(ctx context.Context, sess *storefront.Session, client *storefront.Client, cmd string, args []string) error {
	switch cmd {
	case "packages":
		return cmdPackages(ctx, client, args)
	case "register":
		return cmdRegister(ctx, sess, args)
	case "login":
		return cmdLogin(ctx, sess, args)
	case "logout":
		if _, err := sess.Logout(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	case "whoami":
		st, err := sess.Refresh(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s %s <%s>\n", st.User.FirstName, st.User.LastName, st.User.Email)
		return nil
	case "cart":
		return cmdCart(ctx, sess, client, args)
	case "checkout":
		return cmdCheckout(ctx, sess, args)
	case "bookings":
		return cmdBookings(ctx, sess, args)
	case "cancel":
		id, err := bookingArg(args)
		if err != nil {
			return err
		}
		if err := sess.CancelBooking(ctx, id); err != nil {
			return err
		}
		fmt.Printf("Booking %d cancelled.\n", id)
		return nil
	case "receipt":
		return cmdReceipt(ctx, sess, args)
	}
	return fmt.Errorf("unknown command %q\n%s", cmd, usage)
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func cmdPackages(ctx context.Context, client *storefront.Client, args []string) error {
	fs := flag.NewFlagSet("packages", flag.ContinueOnError)
	filter := storefront.DefaultFilter()
	fs.StringVar(&filter.Category, "category", filter.Category, "all, domestic or international")
	fs.StringVar(&filter.Search, "search", "", "text to match in name, destination or description")
	fs.StringVar(&filter.SortBy, "sort", filter.SortBy, "name, price or rating; prefix - for descending")
	page := fs.Int("page", 1, "page number")
	minPrice := fs.Int64("min", 0, "minimum price")
	maxPrice := fs.Int64("max", filter.MaxPrice.IntPart(), "maximum price, 0 for none")
	if err := fs.Parse(args); err != nil {
		return err
	}
	filter.MinPrice = decimal.NewFromInt(*minPrice)
	filter.MaxPrice = decimal.NewFromInt(*maxPrice)

	all, err := client.ListPackages(ctx, "")
	if err != nil {
		return err
	}
	matched, err := filter.Apply(all)
	if err != nil {
		return err
	}
	p := storefront.Paginate(matched, *page, storefront.DefaultPerPage)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDESTINATION\tDURATION\tPRICE\tRATING")
	for _, pkg := range p.Items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%.1f\n", pkg.ID, pkg.Name, pkg.Destination, pkg.Duration, money(pkg.Price), pkg.Rating)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if p.Total == 0 {
		fmt.Println("No packages match. Try adjusting your filters.")
		return nil
	}
	pages := make([]string, 0, 5)
	for _, n := range storefront.VisiblePages(p.Number, p.TotalPages) {
		if n == p.Number {
			pages = append(pages, "["+strconv.Itoa(n)+"]")
		} else {
			pages = append(pages, strconv.Itoa(n))
		}
	}
	fmt.Printf("Showing %d to %d of %d packages (%d total)  pages: %s\n",
		p.From, p.To, p.Total, len(all), strings.Join(pages, " "))
	return nil
}

func cmdRegister(ctx context.Context, sess *storefront.Session, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	var req models.RegisterRequest
	fs.StringVar(&req.FirstName, "first", "", "first name")
	fs.StringVar(&req.LastName, "last", "", "last name")
	fs.StringVar(&req.Email, "email", "", "email")
	fs.StringVar(&req.Password, "password", "", "password, at least 6 characters")
	fs.StringVar(&req.Phone, "phone", "", "phone")
	fs.StringVar(&req.Address, "address", "", "address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := sess.Register(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("Welcome, %s! You are logged in.\n", st.User.FirstName)
	return nil
}

func cmdLogin(ctx context.Context, sess *storefront.Session, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "email")
	password := fs.String("password", os.Getenv("STOREFRONT_PASSWORD"), "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := sess.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Printf("Welcome back, %s!\n", st.User.FirstName)
	return nil
}

func cmdCart(ctx context.Context, sess *storefront.Session, client *storefront.Client, args []string) error {
	if len(args) == 0 {
		args = []string{"show"}
	}

	var err error
	switch args[0] {
	case "add":
		if len(args) != 2 {
			return fmt.Errorf("usage: cart add <packageId>")
		}
		id, perr := strconv.ParseInt(args[1], 10, 64)
		if perr != nil {
			return fmt.Errorf("invalid package id %q", args[1])
		}
		pkg, gerr := client.GetPackage(ctx, id)
		if gerr != nil {
			return gerr
		}
		if !pkg.Available {
			return fmt.Errorf("%s is not available for booking", pkg.Name)
		}
		_, err = sess.AddToCart(pkg)
	case "update":
		if len(args) != 3 {
			return fmt.Errorf("usage: cart update <cartId> <qty>")
		}
		qty, perr := strconv.Atoi(args[2])
		if perr != nil {
			return fmt.Errorf("invalid quantity %q", args[2])
		}
		_, err = sess.UpdateCartItem(args[1], qty)
	case "remove":
		if len(args) != 2 {
			return fmt.Errorf("usage: cart remove <cartId>")
		}
		_, err = sess.RemoveFromCart(args[1])
	case "clear":
		_, err = sess.ClearCart()
	case "show":
	default:
		return fmt.Errorf("unknown cart command %q", args[0])
	}
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("cart show", flag.ContinueOnError)
	tier := fs.String("tier", "standard", "processing tier")
	promo := fs.String("promo", "", "promo code")
	if args[0] == "show" {
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
	}
	return printCart(sess, *tier, *promo)
}

func printCart(sess *storefront.Session, tier, promo string) error {
	cart := sess.Cart()
	if cart.IsEmpty() {
		fmt.Println("Your cart is empty.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CART ID\tPACKAGE\tQTY\tPRICE\tTOTAL")
	for _, it := range cart.Items() {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", it.CartID, it.Name, it.Quantity, money(it.Price), money(it.LineTotal()))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	s, err := cart.Quote(tier, promo)
	if err != nil && s.ProcessingTier == "" {
		return err
	}
	if err != nil {
		fmt.Println("note:", err)
	}
	fmt.Printf("\n%d items\nSubtotal: %s\nDiscount: -%s\nTax (10%%): %s\nProcessing (%s): %s\nTotal: %s\n",
		s.ItemCount, money(s.Subtotal), money(s.Discount), money(s.Tax), s.ProcessingTier, money(s.Shipping), money(s.Total))
	return nil
}

func cmdCheckout(ctx context.Context, sess *storefront.Session, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	var opts storefront.CheckoutOptions
	fs.StringVar(&opts.Processing, "tier", "standard", "processing tier: standard, express or priority")
	fs.StringVar(&opts.PromoCode, "promo", "", "promo code")
	fs.StringVar(&opts.TravelDate, "date", "", "travel date, YYYY-MM-DD")
	fs.StringVar(&opts.SpecialRequests, "notes", "", "special requests")
	if err := fs.Parse(args); err != nil {
		return err
	}

	created, err := sess.Checkout(ctx, opts)
	if err != nil {
		return err
	}
	fmt.Printf("Booking %d confirmed. Reference %s, total %s.\n", created.BookingID, created.Reference, money(created.Summary.Total))
	return nil
}

func cmdBookings(ctx context.Context, sess *storefront.Session, args []string) error {
	fs := flag.NewFlagSet("bookings", flag.ContinueOnError)
	status := fs.String("status", "all", "filter by status")
	if err := fs.Parse(args); err != nil {
		return err
	}

	all, err := sess.Bookings(ctx, "")
	if err != nil {
		return err
	}
	shown := storefront.FilterByStatus(all, *status)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tREFERENCE\tSTATUS\tDATE\tPACKAGES\tTOTAL")
	for _, b := range shown {
		names := make([]string, 0, len(b.Items))
		for _, it := range b.Items {
			names = append(names, fmt.Sprintf("%s x%d", it.PackageName, it.Quantity))
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", b.ID, b.BookingReference, b.Status,
			b.BookingDate.Format("2006-01-02"), strings.Join(names, ", "), money(b.TotalAmount))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	counts := storefront.CountByStatus(all)
	fmt.Printf("\n%d bookings, %d packages, %d confirmed, %d pending. Total spent %s.\n",
		len(all), storefront.PackageCount(all), counts[models.BookingConfirmed], counts[models.BookingPending],
		money(storefront.TotalSpent(all)))
	return nil
}

func bookingArg(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("booking id required")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid booking id %q", args[0])
	}
	return id, nil
}

func cmdReceipt(ctx context.Context, sess *storefront.Session, args []string) error {
	id, err := bookingArg(args)
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("receipt", flag.ContinueOnError)
	out := fs.String("o", "", "output file")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	pdf, err := sess.Receipt(ctx, id)
	if err != nil {
		return err
	}
	path := *out
	if path == "" {
		path = fmt.Sprintf("booking-%d.pdf", id)
	}
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return err
	}
	fmt.Println("Receipt saved to", path)
	return nil
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/bincshop/storefront-client/internal/account"
	"github.com/bincshop/storefront-client/internal/alert"
	"github.com/bincshop/storefront-client/internal/api"
	"github.com/bincshop/storefront-client/internal/cache"
	"github.com/bincshop/storefront-client/internal/catalog"
	"github.com/bincshop/storefront-client/internal/config"
	"github.com/bincshop/storefront-client/internal/fetch"
	"github.com/bincshop/storefront-client/internal/identity"
	"github.com/bincshop/storefront-client/internal/notification"
	"github.com/bincshop/storefront-client/internal/observe"
	"github.com/bincshop/storefront-client/internal/owner"
	"github.com/bincshop/storefront-client/internal/reaction"
	"github.com/bincshop/storefront-client/internal/session"
	"github.com/bincshop/storefront-client/internal/store"
)

// app bundles the constructed services and stores for the CLI commands.
type app struct {
	catalog       *catalog.Service
	identity      *identity.Service
	account       *account.Service
	owner         *owner.Service
	notifications *notification.Service

	auth      *store.Auth
	products  *store.Products
	favorites *store.Favorites
	compare   *store.Compare
	cart      *store.Cart
	reactions *store.Reactions
}

func main() {
	configureLogging()

	logBuildInfo()

	if err := run(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: storefront <products|product|login|register|favorites|compare|cart|notifications|shop> [args]")
	}

	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("configuration load failed: %w", err)
	}

	shutdownTelemetry, err := observe.Configure(ctx, cfg.Observe)
	if err != nil {
		return fmt.Errorf("telemetry bootstrap failed: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(ctx); err != nil {
			log.Warn().Err(err).Msg("telemetry: shutdown failed")
		}
	}()

	a, err := configureApp(ctx, cfg)
	if err != nil {
		return err
	}

	switch args[0] {
	case "products":
		return a.cmdProducts(ctx, args[1:])
	case "product":
		return a.cmdProduct(ctx, args[1:])
	case "login":
		return a.cmdLogin(ctx, args[1:])
	case "register":
		return a.cmdRegister(ctx, args[1:])
	case "favorites":
		return a.cmdFavorites(ctx, args[1:])
	case "compare":
		return a.cmdCompare(ctx, args[1:])
	case "cart":
		return a.cmdCart(ctx, args[1:])
	case "notifications":
		return a.cmdNotifications(ctx, args[1:])
	case "shop":
		return a.cmdShop(ctx, args[1:])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func configureApp(ctx context.Context, cfg config.Config) (*app, error) {
	notify := alert.LogNotifier{}

	sessionPath := cfg.Session.Path
	if sessionPath == "" {
		p, err := session.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("session path: %w", err)
		}
		sessionPath = p
	}
	sessions := session.NewManager(session.NewFileStore(sessionPath), &session.MemoryStore{})

	httpClient := &http.Client{
		Transport: observe.HTTPTransport(configureHTTPTransport(cfg.HTTP), cfg.Observe),
	}

	client, err := api.New(cfg.API.BaseURL, cfg.API.Timeout(),
		api.WithHTTPClient(httpClient),
		api.WithTokenProvider(sessions),
		api.WithConnectivity(api.NewInterfaceConnectivity()),
		api.WithNotifier(notify),
	)
	if err != nil {
		return nil, fmt.Errorf("API client configuration failed: %w", err)
	}

	identitySvc := identity.NewService(client, sessions)
	client.SetRefresher(identitySvc)

	lists, err := cache.NewMemory[[]catalog.Product](cfg.Cache.TTL(), cfg.Cache.MaxEntries)
	if err != nil {
		return nil, fmt.Errorf("listing cache configuration failed: %w", err)
	}
	details, err := cache.NewMemory[catalog.Detail](cfg.Cache.TTL(), cfg.Cache.MaxEntries)
	if err != nil {
		return nil, fmt.Errorf("detail cache configuration failed: %w", err)
	}
	categories, err := cache.NewMemory[[]catalog.Category](cfg.Cache.TTL(), cfg.Cache.MaxEntries)
	if err != nil {
		return nil, fmt.Errorf("category cache configuration failed: %w", err)
	}

	catalogSvc := catalog.NewService(client,
		fetch.NewGroup[[]catalog.Product](cache.NewInstrumented[[]catalog.Product](lists, "listings")),
		fetch.NewGroup[catalog.Detail](cache.NewInstrumented[catalog.Detail](details, "details")),
		fetch.NewGroup[[]catalog.Category](cache.NewInstrumented[[]catalog.Category](categories, "categories")))

	accountSvc := account.NewService(client)
	reactionSvc := reaction.NewService(client)

	a := &app{
		catalog:       catalogSvc,
		identity:      identitySvc,
		account:       accountSvc,
		owner:         owner.NewService(client),
		notifications: notification.NewService(client),
		auth:          store.NewAuth(identitySvc, sessions, notify),
		products:      store.NewProducts(catalogSvc),
		favorites:     store.NewFavorites(accountSvc, notify),
		compare:       store.NewCompare(),
		cart:          store.NewCart(),
		reactions:     store.NewReactions(reactionSvc, notify),
	}

	// Transfer guest favorites to the account on every successful login.
	a.auth.OnLogin(func(ctx context.Context) {
		outcome := a.favorites.MergeGuest(ctx)
		if len(outcome.Merged) > 0 {
			log.Info().Ints64("products", outcome.Merged).Msg("guest favorites transferred")
		}
	})

	a.auth.Verify(ctx)
	return a, nil
}

func (a *app) cmdProducts(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	listing := fs.String("listing", "all", "listing to show: all, new or popular")
	limit := fs.Int("limit", 10, "maximum number of products")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var products []catalog.Product
	var err error
	switch *listing {
	case "all":
		products, err = a.products.LoadAll(ctx)
	case "new":
		products, err = a.products.LoadNew(ctx, *limit)
	case "popular":
		products, err = a.products.LoadPopular(ctx, *limit)
	default:
		return fmt.Errorf("unknown listing %q", *listing)
	}
	if err != nil {
		return err
	}

	if len(products) > *limit {
		products = products[:*limit]
	}
	for _, p := range products {
		fmt.Printf("%6d  %-40s %s\n", p.ID, p.Name, formatPrice(p.Price))
	}
	return nil
}

func (a *app) cmdProduct(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: storefront product <id>")
	}
	id, err := catalog.ParseProductID(args[0])
	if err != nil {
		return err
	}

	detail, err := a.products.LoadDetail(ctx, id)
	if err != nil {
		return err
	}

	p := detail.Product
	fmt.Printf("%s\n%s\n%s  (stock: %d)\n", p.Name, p.Description, formatPrice(p.Price), p.Stock)
	if len(detail.RelatedProducts) > 0 {
		fmt.Println("related:")
		for _, r := range detail.RelatedProducts {
			fmt.Printf("  %6d  %s\n", r.ID, r.Name)
		}
	}
	return nil
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	remember := fs.Bool("remember", false, "keep the session across runs")
	if err := fs.Parse(args); err != nil {
		return err
	}

	err := a.auth.Login(ctx, identity.Credentials{Email: *email, Password: *password}, *remember)
	if err != nil {
		return err
	}

	if user := a.auth.User(); user != nil {
		fmt.Printf("logged in as %s\n", user.Email)
	} else {
		fmt.Println("logged in")
	}
	return nil
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := a.auth.Register(ctx, identity.Registration{
		Name:     *name,
		Email:    *email,
		Password: *password,
	})
	if err != nil {
		return err
	}

	// Registration issues no tokens; a separate login is required.
	fmt.Printf("registered %s, log in to continue\n", user.Email)
	return nil
}

func (a *app) cmdFavorites(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("favorites", flag.ContinueOnError)
	toggle := fs.String("toggle", "", "product id to toggle before listing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !a.auth.Authenticated() {
		return errors.New("favorites require a login")
	}

	if *toggle != "" {
		id, err := catalog.ParseProductID(*toggle)
		if err != nil {
			return err
		}
		detail, err := a.products.LoadDetail(ctx, id)
		if err != nil {
			return err
		}
		favorite, err := a.favorites.Toggle(ctx, detail.Product)
		if err != nil {
			return err
		}
		fmt.Printf("%s: favorite=%v\n", detail.Product.Name, favorite)
	}

	favorites, err := a.favorites.Load(ctx)
	if err != nil {
		return err
	}
	for _, p := range favorites {
		fmt.Printf("%6d  %-40s %s\n", p.ID, p.Name, formatPrice(p.Price))
	}
	return nil
}

func (a *app) cmdCompare(ctx context.Context, args []string) error {
	for _, arg := range args {
		id, err := catalog.ParseProductID(arg)
		if err != nil {
			return err
		}
		detail, err := a.products.LoadDetail(ctx, id)
		if err != nil {
			return err
		}
		a.compare.Add(detail.Product)
	}

	for _, p := range a.compare.Items() {
		fmt.Printf("%6d  %-40s %-12s stock=%d\n", p.ID, p.Name, formatPrice(p.Price), p.Stock)
	}
	return nil
}

func (a *app) cmdCart(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cart", flag.ContinueOnError)
	add := fs.String("add", "", "product id to add before listing")
	qty := fs.Int("qty", 1, "quantity for -add")
	remove := fs.String("remove", "", "product id to remove before listing")
	clear := fs.Bool("clear", false, "empty the cart")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *clear {
		a.cart.Clear()
	}
	if *add != "" {
		id, err := catalog.ParseProductID(*add)
		if err != nil {
			return err
		}
		detail, err := a.products.LoadDetail(ctx, id)
		if err != nil {
			return err
		}
		a.cart.Add(detail.Product, *qty)
	}
	if *remove != "" {
		id, err := catalog.ParseProductID(*remove)
		if err != nil {
			return err
		}
		a.cart.Remove(id)
	}

	for _, item := range a.cart.Items() {
		fmt.Printf("%6d  %-40s x%-3d %s\n",
			item.Product.ID, item.Product.Name, item.Quantity, formatPrice(item.Product.Price))
	}
	fmt.Printf("total: %s\n", formatPrice(a.cart.Total()))
	return nil
}

func (a *app) cmdShop(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("shop", flag.ContinueOnError)
	register := fs.Bool("register", false, "register a shop instead of showing the current one")
	name := fs.String("name", "", "shop name (with -register)")
	description := fs.String("description", "", "shop description (with -register)")
	logo := fs.String("logo", "", "path to a logo image (with -register)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !a.auth.Authenticated() {
		return errors.New("shop management requires a login")
	}

	if *register {
		reg := owner.ShopRegistration{Name: *name, Description: *description}
		if *logo != "" {
			f, err := os.Open(*logo)
			if err != nil {
				return fmt.Errorf("open logo: %w", err)
			}
			defer f.Close()
			reg.LogoName = filepath.Base(*logo)
			reg.Logo = f
		}
		shop, err := a.owner.RegisterShop(ctx, reg)
		if err != nil {
			return err
		}
		fmt.Printf("registered shop %q (approval pending: %v)\n", shop.Name, !shop.IsApproved)
		return nil
	}

	shop, err := a.owner.CheckShop(ctx)
	if err != nil {
		return err
	}
	if shop == nil {
		fmt.Println("no shop registered, use -register to create one")
		return nil
	}

	fmt.Printf("%s — %s\n", shop.Name, shop.Description)
	stats, err := a.owner.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("products: %d  orders: %d (%d pending)  revenue: %s\n",
		stats.TotalProducts, stats.TotalOrders, stats.PendingOrders, formatPrice(stats.TotalRevenue))
	return nil
}

func (a *app) cmdNotifications(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("notifications", flag.ContinueOnError)
	markRead := fs.Bool("mark-read", false, "mark all notifications read after listing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !a.auth.Authenticated() {
		return errors.New("notifications require a login")
	}

	list, err := a.notifications.List(ctx)
	if err != nil {
		return err
	}
	for _, n := range list {
		marker := " "
		if !n.IsRead {
			marker = "*"
		}
		fmt.Printf("%s %s: %s\n", marker, n.Title, n.Message)
	}

	if *markRead {
		return a.notifications.MarkAllRead(ctx)
	}
	return nil
}

// formatPrice renders a catalog price for terminal output.
func formatPrice(v float64) string {
	printer := message.NewPrinter(language.English)
	return printer.Sprintf("%v", currency.NarrowSymbol(currency.USD.Amount(v)))
}

func configureLogging() {
	// Set global level to the minimum: allows the Open Telemetry logging to be
	// configured separately. However, it means that any logger that sets its
	// level will log as this effectively disables the global level.
	zerolog.SetGlobalLevel(zerolog.Level(-128))

	// default level is Info
	log.Logger = log.Level(zerolog.InfoLevel)

	if os.Getenv("STOREFRONT_ENV") == config.EnvDevelopment {
		log.Logger = log.
			Output(zerolog.ConsoleWriter{Out: os.Stdout}).
			Level(zerolog.DebugLevel)
	}

	zerolog.DefaultContextLogger = &log.Logger
}

func logBuildInfo() {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	ev := log.Info()
	for _, v := range buildInfo.Settings {
		if strings.HasPrefix(v.Key, "vcs.") ||
			strings.HasPrefix(v.Key, "GO") ||
			v.Key == "CGO_ENABLED" {
			ev = ev.Str(v.Key, v.Value)
		}
	}

	ev.Msg("build information")
}

func configureHTTPTransport(cfg config.HTTPConfig) *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	transport.MaxIdleConns = cfg.MaxIdleConns
	transport.MaxConnsPerHost = cfg.MaxConnsPerHost

	return transport
}

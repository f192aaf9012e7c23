package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/geolocation"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
	"github.com/i474232898/weather-dashboard/internal/session"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/client"
)

const usage = `Usage: weather-dashboard [flags] <command> [args]

Commands:
  search <city>          current conditions, air quality and 5-day forecast
  here                   weather for the configured home location
  fav add <city>         search a city and save it as a favorite
  fav list               list favorites
  fav rm <id|name>       remove a favorite
  fav show <id|name>     weather for a favorite by its saved coordinates
  unit <metric|imperial> set the unit preference
  last                   show the last successfully viewed weather
  watch [city]           refresh a city (default: last viewed) on an interval

Flags:
`

func main() {
	cfg, err := config.LoadDashboard()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	fs := flag.NewFlagSet("weather-dashboard", flag.ExitOnError)
	proxyURL := fs.String("proxy", cfg.ProxyURL, "Weather proxy endpoint")
	dbPath := fs.String("db", cfg.DBPath, "Path of the state database")
	verbose := fs.Bool("v", false, "Log to stderr")
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	fs.Parse(os.Args[1:])

	if !*verbose {
		log.SetOutput(io.Discard)
	}
	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.OpenSQLite(ctx, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	src := client.New(*proxyURL, &http.Client{Timeout: cfg.HTTPTimeout})
	opts := []session.Option{}
	if loc := newLocator(cfg); loc != nil {
		opts = append(opts, session.WithLocator(loc))
	}

	a := &app{
		cfg:   cfg,
		store: session.New(ctx, src, db, opts...),
		out:   os.Stdout,
		now:   time.Now,
	}

	if err := a.run(ctx, fs.Args()); err != nil {
		if !errors.Is(err, errShown) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		db.Close()
		os.Exit(1)
	}
}

func newLocator(cfg *config.DashboardConfig) geolocation.Locator {
	switch {
	case cfg.Home != nil:
		return geolocation.NewStaticLocator(*cfg.Home)
	case cfg.HomeCity != "":
		return geolocation.NewAddressLocator(cfg.GeocoderAPIKey, cfg.HomeCity, "", cfg.HomeCountry)
	default:
		return nil
	}
}

// errShown marks failures whose message is already on the session state
// and has been rendered.
var errShown = errors.New("shown")

type app struct {
	cfg   *config.DashboardConfig
	store *session.Store
	out   io.Writer
	now   func() time.Time
}

func (a *app) run(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "search":
		if err := a.store.Search(ctx, strings.Join(rest, " ")); err != nil {
			return a.shown()
		}
		a.show()
	case "here":
		if err := a.store.SearchCurrentLocation(ctx); err != nil {
			return a.shown()
		}
		a.show()
	case "fav":
		return a.fav(ctx, rest)
	case "unit":
		if len(rest) != 1 {
			return errors.New("usage: unit <metric|imperial>")
		}
		unit, ok := weather.ParseUnit(rest[0])
		if !ok {
			return fmt.Errorf("unknown unit %q", rest[0])
		}
		if err := a.store.SetUnit(ctx, unit); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Unit set to %s.\n", unit)
	case "last":
		st := a.store.State()
		renderLastViewed(a.out, st.LastViewed, st.Unit, a.now())
	case "watch":
		return a.watch(ctx, rest)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func (a *app) fav(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: fav add|list|rm|show")
	}
	sub, rest := args[0], strings.Join(args[1:], " ")

	switch sub {
	case "add":
		if err := a.store.Search(ctx, rest); err != nil {
			return a.shown()
		}
		st := a.store.State()
		if !a.store.AddFavorite(*st.Weather) {
			fmt.Fprintf(a.out, "%s is already a favorite.\n", st.Weather.Name)
			return nil
		}
		fmt.Fprintf(a.out, "Added %s to favorites.\n", st.Weather.Name)
	case "list":
		renderFavorites(a.out, a.store.State().Favorites)
	case "rm":
		fav, err := a.findFavorite(rest)
		if err != nil {
			return err
		}
		a.store.RemoveFavorite(fav.ID)
		fmt.Fprintf(a.out, "Removed %s.\n", fav.Name)
	case "show":
		fav, err := a.findFavorite(rest)
		if err != nil {
			return err
		}
		if err := a.store.LoadFavoriteWeather(ctx, fav); err != nil {
			return a.shown()
		}
		a.show()
	default:
		return fmt.Errorf("unknown fav command %q", sub)
	}
	return nil
}

func (a *app) findFavorite(key string) (weather.FavoriteCity, error) {
	key = strings.TrimSpace(key)
	for _, f := range a.store.State().Favorites {
		if f.ID == key || strings.EqualFold(f.Name, key) {
			return f, nil
		}
	}
	return weather.FavoriteCity{}, fmt.Errorf("no favorite matches %q", key)
}

func (a *app) watch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	interval := fs.Duration("interval", a.cfg.RefreshInterval, "Refresh interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	city := strings.Join(fs.Args(), " ")
	if city == "" {
		if lv := a.store.State().LastViewed; lv != nil {
			city = lv.City
		}
	}
	if city == "" {
		return errors.New("usage: watch [-interval 15m] <city>")
	}

	// The search sets the refresh target and shows the first result; the
	// scheduler only takes over from the next interval.
	if err := a.store.Search(ctx, city); err != nil {
		return a.shown()
	}
	a.show()

	sched := scheduler.New(a.store, *interval, a.cfg.HTTPTimeout*3)
	sched.WaitForSchedule = true
	sched.OnRefresh = func(err error) {
		if errors.Is(err, session.ErrSuperseded) {
			return
		}
		fmt.Fprintf(a.out, "\n--- %s ---\n", a.now().Format(time.Kitchen))
		a.show()
	}
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	<-ctx.Done()
	return nil
}

func (a *app) show() {
	renderState(a.out, a.store.State(), a.now())
}

func (a *app) shown() error {
	a.show()
	return errShown
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"text/tabwriter"
	"time"

	"cav/flightrelay/internal/client"
	"cav/flightrelay/internal/common"
	"cav/flightrelay/internal/config"
	"cav/flightrelay/internal/constants"
	"cav/flightrelay/internal/logging"
	"cav/flightrelay/internal/metrics"
	"cav/flightrelay/internal/providers"
	"cav/flightrelay/internal/screens"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

var (
	screenName = flag.String("screen", "live", "screen to open: live, bids, tours or events")
	relayURL   = flag.String("relay", "", "relay base URL (defaults to the configured listen address)")
	tour       = flag.String("tour", "", "tour search term")
	category   = flag.String("category", "", "tour category search term")
	network    = flag.String("network", "", "network passed to flight tracking")
	route      = flag.String("route", "", "route passed to SimBrief")
	message    = flag.String("send", "", "send a chat message and exit (live)")
	fly        = flag.String("fly", "", "bid or flight id to fly")
	restore    = flag.String("restore", "", "bid id to restore")
	unbook     = flag.String("unbook", "", "bid id to unbook (bids)")
	simbrief   = flag.String("simbrief", "", "bid or flight id to plan with SimBrief")
	watch      = flag.Bool("watch", true, "keep redrawing polled screens until interrupted")
)

// colorNotifier prints notifications the way the host would toast them.
var colorNotifier = common.NotifierFunc(func(n common.Notification) {
	c := color.New(color.FgGreen)
	switch n.Type {
	case constants.NotifyWarning:
		c = color.New(color.FgYellow)
	case constants.NotifyDanger:
		c = color.New(color.FgRed, color.Bold)
	}
	c.Fprintf(os.Stderr, "[%s] %s\n", n.Plugin, n.Message)
})

func main() {
	flag.Parse()
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}
	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	base := *relayURL
	if base == "" {
		base = "http://" + cfg.Relay.ListenAddr + "/"
	}
	relay := client.NewRelayClient(base, cfg.Upstream.Timeout)
	host := providers.NewHostAPIProvider(cfg.Host.BaseURL)
	reg := metrics.NewMetricsRegistry()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch *screenName {
	case "live":
		err = runLive(ctx, relay, cfg.Poll, reg)
	case "bids":
		err = runBids(ctx, relay, host, cfg.Poll, reg)
	case "tours":
		err = runTours(ctx, relay, host, reg)
	case "events":
		err = runEvents(ctx, relay, host, reg)
	default:
		err = fmt.Errorf("unknown screen %q", *screenName)
	}
	if err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runLive(ctx context.Context, relay *client.RelayClient, poll config.PollConfig, reg *metrics.MetricsRegistry) error {
	s := screens.NewLiveFlightsScreen(relay, poll, colorNotifier, reg)

	if *message != "" {
		return s.SendMessage(ctx, *message)
	}

	if !*watch {
		s.Flights.FetchNow(ctx)
		s.Chat.FetchNow(ctx)
		drawLive(os.Stdout, s)
		return nil
	}

	var drawMu sync.Mutex
	s.OnUpdate(func() {
		drawMu.Lock()
		defer drawMu.Unlock()
		drawLive(os.Stdout, s)
	})
	s.Mount(ctx)
	defer s.Unmount()

	<-ctx.Done()
	return nil
}

func drawLive(w io.Writer, s *screens.LiveFlightsScreen) {
	fmt.Fprintf(w, "\n%s  %s\n", color.New(color.Bold).Sprint("Live flights"), time.Now().Format(time.Kitchen))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FLIGHT\tPILOT\tDEP\tARR\tAIRCRAFT\tPHASE\tDTG\tETA")
	for _, r := range s.Rows() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", r.FlightNumber, r.Pilot, r.DepICAO, r.ArrICAO, r.Aircraft, r.Phase, r.DTG, r.ETA)
	}
	tw.Flush()

	msgs := s.Messages()
	if len(msgs) > 5 {
		msgs = msgs[len(msgs)-5:]
	}
	for _, m := range msgs {
		fmt.Fprintf(w, "%s %s: %s\n", m.Timestamp, color.CyanString(screens.StripHTML(m.Pilot)), screens.StripHTML(m.Message))
	}
}

func runBids(ctx context.Context, relay *client.RelayClient, host *providers.HostAPIProvider, poll config.PollConfig, reg *metrics.MetricsRegistry) error {
	s := screens.NewBidsScreen(relay, host, poll, colorNotifier, reg)
	s.Mount(ctx)
	defer s.Unmount()

	switch {
	case *unbook != "":
		return s.Unbook(ctx, *unbook)
	case *fly != "":
		return s.Fly(ctx, *fly, *network)
	case *restore != "":
		return s.Restore(ctx, *restore, *network)
	case *simbrief != "":
		return s.PlanWithSimBrief(ctx, *simbrief, *network)
	}

	drawFlights(os.Stdout, "Dispatched flights", s.Rows())
	if !*watch {
		return nil
	}

	interval := poll.Bookings
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			drawFlights(os.Stdout, "Dispatched flights", s.Rows())
		}
	}
}

func runTours(ctx context.Context, relay *client.RelayClient, host *providers.HostAPIProvider, reg *metrics.MetricsRegistry) error {
	s := screens.NewTourSearchScreen(relay, host, colorNotifier, reg)
	s.Mount(ctx)

	if *tour != "" || *category != "" {
		s.Search(ctx, client.TourQuery{Tour: *tour, Category: *category})
	}
	if err := searchAction(ctx, s.Fly, s.PlanWithSimBrief, s.SimBriefInstalled()); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Categories: %s\n", strings.Join(s.CategoryNames(), ", "))
	drawFlights(os.Stdout, s.Summary("Tour Flights"), s.Rows())
	return nil
}

func runEvents(ctx context.Context, relay *client.RelayClient, host *providers.HostAPIProvider, reg *metrics.MetricsRegistry) error {
	s := screens.NewEventSearchScreen(relay, host, colorNotifier, reg)
	s.Mount(ctx)

	if err := searchAction(ctx, s.Fly, s.PlanWithSimBrief, s.SimBriefInstalled()); err != nil {
		return err
	}
	drawFlights(os.Stdout, s.Summary("Event Flights"), s.Rows())
	return nil
}

type searchActionFunc func(ctx context.Context, flightID, network, route string) error

func searchAction(ctx context.Context, flyFn, planFn searchActionFunc, simBriefInstalled bool) error {
	switch {
	case *fly != "":
		return flyFn(ctx, *fly, *network, *route)
	case *simbrief != "":
		if !simBriefInstalled {
			return fmt.Errorf("the SimBrief plugin is not installed")
		}
		return planFn(ctx, *simbrief, *network, *route)
	}
	return nil
}

func drawFlights(w io.Writer, title string, rows []screens.FlightRow) {
	fmt.Fprintf(w, "\n%s\n", color.New(color.Bold).Sprint(title))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FLIGHT\tFROM\tTO\tDIST\tTIME\tTYPE\tAIRCRAFT\tBID\t")
	for _, r := range rows {
		bid := r.BidID
		if r.Recoverable {
			bid += " (recoverable)"
		}
		if r.Completed {
			bid += " ✓"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n", r.Label, r.Departure, r.Arrival, r.Distance, r.FlightTime, r.Type, r.Aircraft, bid)
	}
	tw.Flush()
}

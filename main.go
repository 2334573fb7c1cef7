package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"time"

	"InkPDF/internal/config"
	"InkPDF/internal/export"
	"InkPDF/internal/ink"
	inknet "InkPDF/internal/net"
	"InkPDF/internal/render"
	"InkPDF/internal/state"
	"InkPDF/internal/ui"
)

const CustomURLScheme = "inkpdf://"

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the TOML config file")
	headless := flag.Bool("headless", false, "serve the host bridge without opening a window")
	discover := flag.Duration("discover", 0, "browse the LAN for running bridges for this long, then exit")
	pages := flag.Int("pages", 1, "number of pages in the document")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Config: %v", err)
	}

	if *discover > 0 {
		runDiscover(cfg, *discover)
		return
	}

	count := *pages
	if cfg.Engine.MaxPages > 0 && count > cfg.Engine.MaxPages {
		count = cfg.Engine.MaxPages
	}
	sizes := make([]export.PageSize, max(count, 1))
	for i := range sizes {
		sizes[i] = ui.LetterPage
	}

	store := state.NewPathStore(nil)
	surface := render.NewCanvas(0, 0)
	settings := cfg.Settings()
	settings.Drawing = !*headless
	engine := ink.NewEngine(store, surface, settings)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *headless {
		runHeadless(ctx, cfg, engine, sizes)
		return
	}
	runDesktop(ctx, cfg, engine, surface, sizes)
}

func runDesktop(ctx context.Context, cfg config.Config, engine *ink.Engine, surface *render.Canvas, sizes []export.PageSize) {
	log.Printf("Starting desktop session %s", state.SessionID)
	shareLink := fmt.Sprintf("%s%s:%d", CustomURLScheme, inknet.OutgoingIP(), port(cfg.Bridge.Addr))
	app := ui.NewApp(engine, surface, sizes, shareLink)

	startBridge(ctx, cfg, engine, app.Ink.Pages, app.Refresh, app.PageChanged)
	app.Run()
}

func runHeadless(ctx context.Context, cfg config.Config, engine *ink.Engine, sizes []export.PageSize) {
	log.Printf("Starting headless session %s", state.SessionID)
	engine.SetPageCount(len(sizes))
	engine.SetPage(1, sizes[0].Width, sizes[0].Height)

	startBridge(ctx, cfg, engine, func() []export.PageSize { return sizes }, nil, nil)
	<-ctx.Done()
	log.Println("Shutting down")
}

// startBridge serves the host bridge and pushes every store change to the
// connected hosts, then to refresh when it is set. onPage follows page
// switches the host makes.
func startBridge(ctx context.Context, cfg config.Config, engine *ink.Engine, pages func() []export.PageSize, refresh func(), onPage func(int)) {
	bridge := inknet.NewBridge()
	inknet.RegisterEngine(bridge, engine, pages, onPage)
	server := inknet.NewServer(bridge)
	engine.Store().OnChange = func(ch state.Change) {
		server.Notify(inknet.TypePathDataChanged, ch)
		if refresh != nil {
			refresh()
		}
	}

	go func() {
		if err := server.ListenAndServe(ctx, cfg.Bridge.Addr); err != nil {
			log.Printf("[BRIDGE] %v", err)
		}
	}()

	if cfg.Bridge.Advertise {
		mdnsServer, err := inknet.Advertise(cfg.Bridge.ServiceType, port(cfg.Bridge.Addr))
		if err != nil {
			log.Printf("[MDNS] %v", err)
		} else {
			go func() {
				<-ctx.Done()
				mdnsServer.Shutdown()
			}()
		}
	}
}

func runDiscover(cfg config.Config, d time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	found := 0
	err := inknet.Browse(ctx, cfg.Bridge.ServiceType, func(addr string) {
		found++
		fmt.Printf("%s%s\n", CustomURLScheme, addr)
	})
	if err != nil {
		log.Fatalf("Discover: %v", err)
	}
	if found == 0 {
		log.Println("No bridges found")
	}
}

func port(addr string) int {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return 0
	}
	n, _ := strconv.Atoi(p)
	return n
}

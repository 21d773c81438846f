package main

import (
	"context"
	"flag"
	"hash/fnv"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lab1702/ironclad-sim/internal/chat"
	"github.com/lab1702/ironclad-sim/internal/config"
	"github.com/lab1702/ironclad-sim/internal/idgen"
	"github.com/lab1702/ironclad-sim/internal/logging"
	"github.com/lab1702/ironclad-sim/internal/login"
	"github.com/lab1702/ironclad-sim/internal/netslot"
	"github.com/lab1702/ironclad-sim/internal/plan"
	"github.com/lab1702/ironclad-sim/internal/sector"
	"github.com/lab1702/ironclad-sim/internal/ship"
	"github.com/lab1702/ironclad-sim/internal/shipmodel"
	"github.com/lab1702/ironclad-sim/internal/starmap"
	"github.com/lab1702/ironclad-sim/internal/station"
	"github.com/lab1702/ironclad-sim/internal/wire"
	"github.com/lab1702/ironclad-sim/internal/xfer"
)

const stationID = "station"

func main() {
	configFile := flag.String("config", "", "config file name (without extension), searched on -config-path")
	configPath := flag.String("config-path", ".", "directory to search for the config file")
	listenAddr := flag.String("listen", "", "override the configured listen address")
	flag.Parse()

	log := logging.New()

	cfg, err := config.Load(*configFile, *configPath)
	if err != nil {
		log.Error("failed to load config", logging.Err(err))
		os.Exit(1)
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}

	accounts := login.NewManager(log, seedFor("accounts"))
	chatServer := chat.NewServer()
	rootSlot := netslot.NewRootSlot("root")
	starMap := starmap.New(log, rootSlot, accounts, chatServer)
	station.Catalog = shipmodel.Catalog()

	for _, name := range cfg.Sectors {
		if name == stationID {
			wireStation(log, rootSlot, starMap, chatServer)
			continue
		}
		wireSector(log, rootSlot, starMap, chatServer, cfg, name)
	}

	go starMap.Run()
	go chatServer.Run()
	go runLoginWatcher(log, rootSlot, accounts, starMap, cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", netslot.WSServeHTTP(rootSlot, log, wire.DecodeEnvelope, wire.EncodeEnvelope))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting", logging.Str("addr", cfg.ListenAddr))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", logging.Err(err))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("shutting down", logging.Str("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	starMap.Stop()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("server shutdown error", logging.Err(err))
	}
	log.Info("server stopped")
}

// wireSector creates one sector worker, registers it with the star map and
// the chat fanout, and starts its turn loop on its own goroutine, per
// spec.md §5 ("each sector runs on its own OS thread").
func wireSector(log logging.Logger, rootSlot *netslot.Slot, starMap *starmap.Map, chatServer *chat.Server, cfg config.Config, name string) {
	slot := rootSlot.CreateSlot(name)
	incoming := make(chan xfer.Join, 32)
	departures := starMap.Departures()

	w := sector.NewWorker(plan.SectorID(name), log, slot, incoming, departures, chatServer.Inbox(), cfg.TurnLength, cfg.PlanDeadline, seedFor(name))
	starMap.Register(plan.SectorID(name), &starmap.Destination{Incoming: incoming, Slot: slot})
	chatServer.Register(name, w)
	go w.Run()
}

// wireStation creates the station worker and a small glue goroutine
// bridging the star map's join handshake (which every destination receives
// identically) into station.Worker's simpler Admit call, since a station
// has no turn loop to drive its own polling.
func wireStation(log logging.Logger, rootSlot *netslot.Slot, starMap *starmap.Map, chatServer *chat.Server) {
	slot := rootSlot.CreateSlot(stationID)
	incoming := make(chan xfer.Join, 32)

	w := station.NewWorker(log, slot, starMap.Departures())
	starMap.Register(stationID, &starmap.Destination{Incoming: incoming, Slot: slot})
	chatServer.Register(stationID, w)

	go func() {
		for j := range incoming {
			sh := ship.FromStored(j.Ship, j.ClientID)
			w.Admit(j.ClientID, j.Account, sh)
			if j.Ack != nil {
				j.Ack <- struct{}{}
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			w.Poll()
		}
	}()
}

// runLoginWatcher polls the root slot for freshly-connected clients'
// LoginPacket submissions and resolves them against the account manager,
// handing successful logins to the star map's join handshake. This is the
// one place a client exists without yet belonging to any sector/station
// destination, per spec.md §4.8.
func runLoginWatcher(log logging.Logger, rootSlot *netslot.Slot, accounts *login.Manager, starMap *starmap.Map, cfg config.Config) {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for range ticker.C {
		for {
			msg, ok := rootSlot.TryReceive()
			if !ok {
				break
			}
			if msg.Kind != netslot.ReceivedPacket {
				continue
			}
			req, ok := msg.Packet.(*wire.LoginPacket)
			if !ok {
				continue
			}
			handleLogin(log, rootSlot, accounts, starMap, cfg, msg.ClientID, req)
		}
	}
}

func handleLogin(log logging.Logger, rootSlot *netslot.Slot, accounts *login.Manager, starMap *starmap.Map, cfg config.Config, clientID idgen.ClientId, req *wire.LoginPacket) {
	acct, err := accounts.Login(clientID, req.Username, req.Password)
	if err != nil {
		rootSlot.Send(clientID, &wire.LoginResultPacket{Error: loginErrorOf(err)})
		log.Warn("login failed", logging.Str("username", req.Username), logging.Err(err))
		return
	}
	rootSlot.Send(clientID, &wire.LoginResultPacket{Error: wire.NoLoginError})

	dest := acct.CurrentSector
	if dest == "" {
		dest = firstSector(cfg)
	}
	starMap.Join(clientID, acct, dest, xfer.JoinSector)
}

func loginErrorOf(err error) wire.LoginError {
	switch err {
	case login.ErrNoSuchAccount:
		return wire.ErrNoSuchAccount
	case login.ErrWrongPassword:
		return wire.ErrWrongPassword
	case login.ErrAlreadyLoggedIn:
		return wire.ErrAlreadyLoggedIn
	default:
		return wire.NoLoginError
	}
}

// firstSector returns a brand-new account's home sector: the first
// configured sector that is not the station.
func firstSector(cfg config.Config) plan.SectorID {
	for _, name := range cfg.Sectors {
		if name != stationID {
			return plan.SectorID(name)
		}
	}
	return plan.SectorID(stationID)
}

func seedFor(name string) int64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return int64(h.Sum64())
}

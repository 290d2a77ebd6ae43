// cmd/sioserial/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/tamzrod/superio-serial/internal/config"
	"github.com/tamzrod/superio-serial/internal/it8786"
	"github.com/tamzrod/superio-serial/internal/linkcheck"
	"github.com/tamzrod/superio-serial/internal/monitor"
	"github.com/tamzrod/superio-serial/internal/report"
	"github.com/tamzrod/superio-serial/internal/status"
	"github.com/tamzrod/superio-serial/internal/superio"
	"github.com/tamzrod/superio-serial/internal/uart"
	"github.com/tamzrod/superio-serial/internal/uart/serial8250"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: sioserial <config.yaml> | sioserial status <file>")
	}

	if os.Args[1] == "status" {
		if len(os.Args) < 3 {
			log.Fatal("usage: sioserial status <file>")
		}
		if err := printStatus(os.Args[2]); err != nil {
			log.Fatalf("status: %v", err)
		}
		return
	}

	cfgPath := os.Args[1]

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	logger, err := report.New(os.Stderr, cfg.Log.Level)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	// --------------------
	// Mailbox + UART driver + chip driver
	// --------------------

	lock := superio.NewFileLock(cfg.SuperIO.LockFile)

	mb, err := superio.New(superio.Config{
		IO:        superio.MemioPort{},
		Lock:      lock,
		Handshake: superio.ITEHandshake,
		LockWait:  time.Duration(cfg.SuperIO.LockWaitMs) * time.Millisecond,
	})
	if err != nil {
		log.Fatalf("mailbox: %v", err)
	}

	ttys, err := serial8250.New(serial8250.Config{
		Devices:  cfg.Serial.Devices,
		Timeout:  time.Duration(cfg.Serial.TimeoutMs) * time.Millisecond,
		Reporter: logger,
	})
	if err != nil {
		log.Fatalf("uart driver: %v", err)
	}

	drv, err := it8786.New(it8786.Config{
		Mailbox:   mb,
		Registrar: ttys,
		Applier:   ttys,
		Reporter:  logger,
	})
	if err != nil {
		log.Fatalf("it8786: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Discovery
	// --------------------

	if err := drv.Init(ctx); err != nil {
		log.Fatalf("init failed (lock=%s): %v", lock.Path(), err)
	}

	applyPorts(drv, cfg.Ports, linkcheck.New(nil, logger), logger)

	// --------------------
	// Status snapshots (optional)
	// --------------------

	monDone := make(chan struct{})

	if cfg.Status.File != "" {
		w, err := status.NewFileWriter(cfg.Status.File)
		if err != nil {
			log.Fatalf("status writer: %v", err)
		}
		mon, err := monitor.New(monitor.Config{
			Interval: time.Duration(cfg.Status.IntervalMs) * time.Millisecond,
		}, drv, w, logger)
		if err != nil {
			log.Fatalf("monitor: %v", err)
		}
		go func() {
			defer close(monDone)
			mon.Run(ctx)
		}()
	} else {
		close(monDone)
	}

	// --------------------
	// Block until signalled, then hand the ports back
	// --------------------

	<-ctx.Done()
	logger.Info("signal received, shutting down")

	// The monitor reads the port table; it must be gone before teardown.
	<-monDone

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	drv.Shutdown(sctx)
}

// applyPorts pushes the configured line settings through each port's
// hook, then runs the optional link check. Failures are per port.
func applyPorts(drv *it8786.Driver, ports []config.PortConfig, checker *linkcheck.Checker, logger report.Reporter) {
	for _, pc := range ports {
		ldn := report.Hex(uint16(pc.LDN))

		settings := uart.LineSettings{
			Baud:     pc.Baud,
			DataBits: pc.DataBits,
			StopBits: pc.StopBits,
			Parity:   uart.Parity(pc.Parity),
		}
		if err := drv.SetLineSettings(pc.LDN, settings); err != nil {
			logger.Warn("unable to apply line settings", "ldn", ldn, "baud", pc.Baud, "err", err)
			continue
		}

		if pc.LinkCheck == nil {
			continue
		}

		pi, ok := portInfo(drv, pc.LDN)
		if !ok {
			continue
		}

		res, err := checker.Check(linkcheck.Config{
			Device:   pi.Device,
			Baud:     pi.Baud,
			DataBits: pc.DataBits,
			StopBits: pc.StopBits,
			Parity:   pc.Parity,
			SlaveID:  pc.LinkCheck.SlaveID,
			Address:  pc.LinkCheck.Address,
			Quantity: pc.LinkCheck.Quantity,
			Timeout:  time.Duration(pc.LinkCheck.TimeoutMs) * time.Millisecond,
		})
		if err != nil {
			logger.Warn("link check failed", "ldn", ldn, "device", pi.Device, "err", err)
			continue
		}
		logger.Info("link check passed", "ldn", ldn, "device", pi.Device, "baud", pi.Baud, "elapsed", res.Elapsed)
	}
}

func portInfo(drv *it8786.Driver, ldn uint8) (it8786.PortInfo, bool) {
	for _, pi := range drv.Ports() {
		if pi.LDN == ldn && pi.State == it8786.Registered {
			return pi, true
		}
	}
	return it8786.PortInfo{}, false
}

func printStatus(path string) error {
	snap, err := status.ReadFile(path)
	if err != nil {
		return err
	}

	fmt.Printf("chip %s  pass %s  at %s\n", report.Hex(snap.ChipID), snap.PassID, snap.At.Format(time.RFC3339))

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "IDX\tLDN\tSTATE\tBASE\tLINE\tDEVICE\tCLOCK\tDIVISOR\tHEALTH\tERR\tSECS")
	for _, p := range snap.Ports {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\t%d\t%s\t%s\t%d\t%d\n",
			p.Index,
			report.Hex(uint16(p.LDN)),
			p.State,
			report.Hex(p.IOBase),
			p.Line,
			p.Device,
			p.UartClock,
			p.Divisor,
			healthName(p.Health),
			p.LastErrorCode,
			p.SecondsInError,
		)
	}
	return tw.Flush()
}

func healthName(h uint16) string {
	switch h {
	case status.HealthOK:
		return "ok"
	case status.HealthError:
		return "error"
	case status.HealthStale:
		return "stale"
	case status.HealthDisabled:
		return "disabled"
	}
	return "unknown"
}

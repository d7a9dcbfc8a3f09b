// Command dectnrp is the lower-stack daemon's entry point: it loads a
// configuration directory, brings up the radio device (real or
// simulated), wires tpoint/HARQ/FEC for the first configured firmware
// instance, and runs until interrupted.
//
// Options are parsed with pflag; the program takes a single positional
// argument naming the JSON configuration directory and shuts down
// cleanly on SIGINT/SIGTERM.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/dectnrp/dectnrp-go/internal/common"
	"github.com/dectnrp/dectnrp-go/internal/config"
	"github.com/dectnrp/dectnrp-go/internal/diag"
	"github.com/dectnrp/dectnrp-go/internal/phy"
	"github.com/dectnrp/dectnrp-go/internal/phy/fec"
	"github.com/dectnrp/dectnrp-go/internal/phy/harq"
	"github.com/dectnrp/dectnrp-go/internal/radio"
	"github.com/dectnrp/dectnrp-go/internal/sections/part3"
	"github.com/dectnrp/dectnrp-go/internal/simulation"
	"github.com/dectnrp/dectnrp-go/internal/tpoint"
	"github.com/dectnrp/dectnrp-go/internal/tpoint/firmware"
)

func main() {
	var logDir = pflag.StringP("log-dir", "l", "", "Directory for log.txt; default stderr only.")
	var scopeAddr = pflag.StringP("scope-addr", "s", ":0", "Listen address for the diagnostic IQ scope (TCP, mDNS-advertised).")
	var noScope = pflag.BoolP("no-scope", "S", false, "Disable the diagnostic IQ scope.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "dectnrp - a software-defined-radio DECT-2020 NR+ lower stack.\n\n")
		fmt.Fprintf(os.Stderr, "Usage: dectnrp [options] <config-dir>\n\n")
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(1)
	}

	if pflag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "exactly one positional argument required: the configuration directory")
		pflag.Usage()
		os.Exit(1)
	}
	configDir := pflag.Arg(0)

	logFile, err := common.OpenLogDestination(*logDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dectnrp: open log destination: %v\n", err)
		os.Exit(1)
	}
	if logFile != nil {
		defer logFile.Close()
	}
	logger := common.NewLayerLogger(logFile, "main")

	cfg, err := config.Load(configDir)
	if err != nil {
		logger.Fatal("config load failed", "err", err)
	}

	if err := run(cfg, *scopeAddr, *noScope, logFile); err != nil {
		logger.Fatal("fatal error", "err", err)
	}
}

// run brings up the first configured worker pool, hardware entry and
// tpoint, and blocks until SIGINT/SIGTERM. It is factored out of main so
// every error it returns (including the config checks at its top) funnels
// through the single log.Fatal call after it in main: startup failures here
// are resource failures, reported and fatal, never panics.
func run(cfg config.Config, scopeAddr string, noScope bool, logFile *os.File) error {
	if len(cfg.Phy.WorkerPools) == 0 {
		return fmt.Errorf("phy.json: no worker_pools configured")
	}
	if len(cfg.Upper.Tpoints) == 0 {
		return fmt.Errorf("upper.json: no tpoints configured")
	}
	if len(cfg.Radio.HW) == 0 {
		return fmt.Errorf("radio.json: no hw entries configured")
	}

	pool := cfg.Phy.WorkerPools[0]
	tp := cfg.Upper.Tpoints[0]
	hw := cfg.Radio.HW[0]

	rdc, err := part3.ParseRadioDeviceClass(pool.RadioDeviceClass)
	if err != nil {
		return fmt.Errorf("phy.json: %w", err)
	}

	maxSizes, ok := part3.GetMaximumPacketSizes(pool.RadioDeviceClass)
	if !ok {
		return fmt.Errorf("phy.json: radio_device_class %q yields no valid packet geometry", pool.RadioDeviceClass)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	radioLog := common.NewLayerLogger(logFile, "radio")
	simLog := common.NewLayerLogger(logFile, "sim")
	tpointLog := common.NewLayerLogger(logFile, "tpoint")

	rx := radio.NewBufferRx(rdc.NTX, hw.RxAntStreamsLengthSlots, hw.NSamplesPerSlot, hw.NotificationPeriodUs, int64(cfg.Radio.SimSampRateLTE))
	txPool := radio.NewBufferTxPool(8, rdc.NTX, maxSizes.NSamplesPacket, hw.TurnaroundSamples)

	var dev radio.HwDevice

	switch hw.HwName {
	case "simulator":
		vs := simulation.NewVirtualSpace(int(float64(cfg.Radio.SimSppUs)*cfg.Radio.SimSampRateLTE/1e6), cfg.Radio.SimSampRateSpeed)
		vs.SetNoiseModel(noiseModelFor(cfg.Radio.SimNoiseType, cfg.Radio.SimSampRateLTE))
		adapter := simulation.NewRadioAdapter(ctx, vs, "dev0", rdc.NTX)
		vs.RegisterTX("dev0", rdc.NTX)
		vs.RegisterRX("dev0", rdc.NTX)
		vd := radio.NewVirtualDevice(cfg.Radio.SimSampRateLTE, rdc.NTX, hw.NSamplesPerSlot, adapter, adapter)
		dev = vd
	default:
		return fmt.Errorf("radio.json: hw_name %q not supported by this build (only \"simulator\")", hw.HwName)
	}

	harqPool := harq.NewProcessPool(pool.NofWorkers, pool.NofWorkers)
	fecEngine := fec.NewFec(maxSizes.G)

	cb := firmware.NewLoopback(harqPool, fecEngine, maxSizes, firstOr(tp.NetworkIDs, 1))
	t := tpoint.New(tp.NetworkIDs, harqPool, fecEngine, tpointLog, cb)
	tpointLog.Info("tpoint ready", "network_ids", t.NetworkIDs, "tx_processes", harqPool.NTX(), "rx_processes", harqPool.NRX())

	phyLog := common.NewLayerLogger(logFile, "phy")
	workers := phy.NewWorkerPool(pool.RadioDeviceClass, pool.NofWorkers, hw.NSamplesPerSlot, rx, txPool, t, phyLog)

	hwLayer := &common.Layer[*radio.DeviceUnit]{Units: []*radio.DeviceUnit{{Dev: dev, Rx: rx, TxPool: txPool}}}
	phyLayer := &common.Layer[*phy.WorkerPool]{Units: []*phy.WorkerPool{workers}}

	if err := hwLayer.Start(ctx); err != nil {
		return fmt.Errorf("radio: start %s: %w", hw.HwName, err)
	}
	defer hwLayer.Stop()

	if err := phyLayer.Start(ctx); err != nil {
		return fmt.Errorf("phy: start worker pool %s: %w", pool.RadioDeviceClass, err)
	}
	defer phyLayer.Stop()

	var scope *diag.TCPScope
	if !noScope {
		scope, err = diag.NewTCPScope(ctx, scopeAddr, tp.FirmwareName, radioLog)
		if err != nil {
			return fmt.Errorf("diag: %w", err)
		}
		defer scope.Close()
	}

	simLog.Info("started", "hw", hw.HwName, "radio_device_class", pool.RadioDeviceClass, "firmware", tp.FirmwareName)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		radioLog.Info("received interrupt, shutting down")
	case <-ctx.Done():
	}

	cancel()
	time.Sleep(10 * time.Millisecond) // let the device's goroutine observe cancellation before Stop() tears down its channels
	return nil
}

func noiseModelFor(kind string, sampleRateHz float64) simulation.NoiseModel {
	switch kind {
	case "thermal":
		return simulation.NewThermalNoise(sampleRateHz, 6.0, 1)
	default:
		return simulation.NewRelativeSNRNoise(20.0, 1)
	}
}

func firstOr(ids []uint32, fallback uint32) uint32 {
	if len(ids) == 0 {
		return fallback
	}
	return ids[0]
}

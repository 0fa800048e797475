// CONDOR - Energy-Aware UAV Survey Mission Planner
//
// Reads a survey request from a JSON file, runs the discretize -> synthesize
// -> energy -> ACO -> stitch pipeline, and logs progress events as they are
// emitted.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/PossumXI/Asgard/Condor/internal/geo"
	"github.com/PossumXI/Asgard/Condor/internal/planner"
	"github.com/PossumXI/Asgard/Condor/internal/planning"
	"github.com/PossumXI/Asgard/Condor/pkg/logging"
)

var (
	version = "1.0.0"

	requestFile = flag.String("request", "", "Path to a PlanRequest JSON file (required)")
	logLevel    = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	logOutput   = flag.String("log-output", "stdout", "Log output: stdout or a file path")
	seed        = flag.Int64("seed", 0, "RNG seed (0 picks a fixed deterministic default)")
)

func main() {
	flag.Parse()
	printBanner()

	log := logging.New(*logLevel, *logOutput)

	if *requestFile == "" {
		log.Fatal("condor: -request is required")
	}

	req, err := loadRequest(*requestFile)
	if err != nil {
		log.Fatalf("condor: failed to load request: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Warn("condor: shutdown signal received, cancelling plan")
		cancel()
	}()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = 1
	}
	rng := rand.New(rand.NewSource(rngSeed))

	sink := &loggingSink{log: log}

	start := time.Now()
	result, err := planner.Plan(ctx, req, nil, nil, sink, rng, log)
	elapsed := time.Since(start)

	if err != nil {
		log.WithError(err).Fatal("condor: plan failed")
	}

	log.WithField("job_id", result.JobID).
		WithField("logical_km", result.LogicalKm).
		WithField("coverage_km", result.CoverageKm).
		WithField("best_score", result.BestScore).
		WithField("best_cost", result.BestCost).
		WithField("elapsed", elapsed).
		Info("condor: plan complete")
}

// requestDoc mirrors PlanRequest's external JSON representation (spec §6).
type requestDoc struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`

	AreaPoly [][2]float64   `json:"area_poly"`
	NoFly    [][][2]float64 `json:"nofly"`

	Drone struct {
		BatteryWh     float64 `json:"battery_wh"`
		ReservePct    float64 `json:"reserve_pct"`
		SpeedKmh      float64 `json:"speed_kmh"`
		PayloadKg     float64 `json:"payload_kg"`
		AltitudeM     float64 `json:"altitude_m"`
		FovDeg        float64 `json:"fov_deg"`
		OverlapPerp   float64 `json:"overlap_perp"`
		OverlapPar    float64 `json:"overlap_par"`
		MinCellAreaM2 float64 `json:"min_cell_area_m2"`
	} `json:"drone"`

	GridType        string  `json:"grid_type"`
	CellSizeKm      float64 `json:"cell_size_km"`
	Ants            int     `json:"ants"`
	Iters           int     `json:"iters"`
	DynamicWeather  bool    `json:"dynamic_weather"`
	RefreshInterval int     `json:"refresh_interval"`
	RefreshMode     string  `json:"refresh_mode"`
	RefreshFraction float64 `json:"refresh_fraction"`
}

func loadRequest(path string) (planning.PlanRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return planning.PlanRequest{}, fmt.Errorf("read request file: %w", err)
	}

	var doc requestDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return planning.PlanRequest{}, fmt.Errorf("parse request file: %w", err)
	}

	req := planning.PlanRequest{
		Base:       geo.Point{Lat: doc.Lat, Lon: doc.Lon},
		AreaPoly:   latlonPairsToPolygon(doc.AreaPoly),
		CellSizeKm: doc.CellSizeKm,
		Drone: planning.DroneConfig{
			BatteryWh:     doc.Drone.BatteryWh,
			ReservePct:    doc.Drone.ReservePct,
			SpeedKmh:      doc.Drone.SpeedKmh,
			PayloadKg:     doc.Drone.PayloadKg,
			AltitudeM:     doc.Drone.AltitudeM,
			FovDeg:        doc.Drone.FovDeg,
			OverlapPerp:   doc.Drone.OverlapPerp,
			OverlapPar:    doc.Drone.OverlapPar,
			MinCellAreaM2: doc.Drone.MinCellAreaM2,
		},
		Ants:            doc.Ants,
		Iters:           doc.Iters,
		DynamicWeather:  doc.DynamicWeather,
		RefreshInterval: doc.RefreshInterval,
		RefreshFraction: doc.RefreshFraction,
	}

	if doc.GridType == "HEX" {
		req.GridType = planning.GridHex
	} else {
		req.GridType = planning.GridSquare
	}
	if doc.RefreshMode == "FULL" {
		req.RefreshMode = planning.RefreshFull
	} else {
		req.RefreshMode = planning.RefreshPartial
	}

	for _, poly := range doc.NoFly {
		req.NoFly = append(req.NoFly, latlonPairsToPolygon(poly))
	}

	return req, nil
}

// latlonPairsToPolygon converts [lat, lon] pairs (the request's wire format)
// into a Polygon, matching the original's (lat, lng) tuple convention.
func latlonPairsToPolygon(pairs [][2]float64) planning.Polygon {
	poly := make(planning.Polygon, len(pairs))
	for i, p := range pairs {
		poly[i] = geo.Point{Lat: p[0], Lon: p[1]}
	}
	return poly
}

// loggingSink adapts a logrus.Logger into a planning.EventSink, logging one
// structured line per event.
type loggingSink struct {
	log *logrus.Logger
}

// Emit logs each PlannerEvent variant at a level and with fields appropriate
// to its payload (spec §6's event table).
func (s *loggingSink) Emit(event planning.PlannerEvent) {
	switch ev := event.(type) {
	case planning.WeatherUpdateEvent:
		s.log.WithFields(logrus.Fields{
			"wind_speed_ms": ev.WindSpeedMs,
			"wind_deg_from": ev.WindDegFrom,
			"temp_c":        ev.TempC,
		}).Info("weather_update")
	case planning.GridEvent:
		s.log.WithFields(logrus.Fields{
			"cells": len(ev.Cells),
			"edges": len(ev.GraphEdges),
		}).Info("grid")
	case planning.AcoIterEvent:
		s.log.WithFields(logrus.Fields{
			"iteration":  ev.Iteration,
			"iter_score": ev.IterScore,
			"best_score": ev.BestScore,
			"best_cost":  ev.BestCost,
		}).Debug("aco_iter")
	case planning.WeatherDynamicEvent:
		s.log.WithFields(logrus.Fields{
			"wind_speed_ms": ev.WindSpeedMs,
			"wind_deg_from": ev.WindDegFrom,
		}).Info("weather_dynamic")
	case planning.AcoErrorEvent:
		s.log.WithField("message", ev.Message).Error("aco_error")
	case planning.DoneEvent:
		s.log.WithFields(logrus.Fields{
			"route_points":    len(ev.Route),
			"mission_len_km":  ev.MissionLenKm,
			"coverage_points": len(ev.CoverageRoute),
			"energy_wh":       ev.EnergyWh,
		}).Info("done")
	}
}

func printBanner() {
	banner := `
 ___  ___  _  _  ___   ___  ___
|  _|/ _ \| \| ||   \ / _ \| _ \
| |_| (_) | .  || |) | (_) |   /
|___|\___/|_|\_||___/ \___/|_|_\
Energy-aware UAV survey mission planner v` + version + `
`
	fmt.Println(banner)
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hydrophase/svtrace/internal/config"
	"github.com/hydrophase/svtrace/internal/monitoring"
	"github.com/hydrophase/svtrace/internal/ragged"
	"github.com/hydrophase/svtrace/internal/sonar"
	"github.com/hydrophase/svtrace/internal/sonar/beamvec"
	"github.com/hydrophase/svtrace/internal/sonar/orient"
	"github.com/hydrophase/svtrace/internal/sonar/raytrace"
	"github.com/hydrophase/svtrace/internal/sonar/rotation"
	"github.com/hydrophase/svtrace/internal/sonar/svp"
	"github.com/hydrophase/svtrace/internal/storage/sqlite"
	"github.com/hydrophase/svtrace/internal/version"
)

var (
	svpFile     = flag.String("svp", "", "Sound velocity profile file to parse")
	dbFile      = flag.String("db", "", "Cast database path")
	migrateCmd  = flag.String("migrate", "", "Run a migration command: up, down or version")
	migrations  = flag.String("migrations", "migrations", "Migrations directory")
	runFile     = flag.String("run", "", "Correction run description (JSON)")
	configFile  = flag.String("config", "", "Processing configuration (JSON)")
	outFile     = flag.String("out", "", "Write correction results to this file instead of stdout")
	showVersion = flag.Bool("version", false, "Print version information and exit")
	quiet       = flag.Bool("quiet", false, "Suppress per-chunk diagnostics")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("svtrace %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}
	if *quiet {
		monitoring.SetLogger(nil)
	}

	cfg := config.Empty()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	switch {
	case *migrateCmd != "":
		if err := runMigrate(); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
	case *runFile != "":
		if err := runCorrection(cfg); err != nil {
			log.Fatalf("Correction run failed: %v", err)
		}
	case *svpFile != "":
		if err := runImport(); err != nil {
			log.Fatalf("Cast import failed: %v", err)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func runMigrate() error {
	if *dbFile == "" {
		return fmt.Errorf("-migrate requires -db")
	}
	db, err := sqlite.Open(*dbFile)
	if err != nil {
		return err
	}
	defer db.Close()

	switch *migrateCmd {
	case "up":
		return db.MigrateUp(*migrations)
	case "down":
		return db.MigrateDown(*migrations)
	case "version":
		version, dirty, err := db.MigrateVersion(*migrations)
		if err != nil {
			return err
		}
		log.Printf("Migration version %d (dirty=%v)", version, dirty)
		return nil
	default:
		return fmt.Errorf("unknown migrate command %q", *migrateCmd)
	}
}

// runImport parses a cast file and either summarizes it or, when a database
// is given, stores every cast it contains.
func runImport() error {
	file, err := svp.Load(*svpFile)
	if err != nil {
		return err
	}
	log.Printf("Parsed %s: %d cast(s)", file.Name, len(file.Casts))

	var store *sqlite.CastStore
	if *dbFile != "" {
		db, err := sqlite.Open(*dbFile)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.MigrateUp(*migrations); err != nil {
			return err
		}
		store = sqlite.NewCastStore(db)
	}

	for _, cast := range file.Casts {
		log.Printf("  %s: time=%.0f lat=%.6f lon=%.6f layers=%d",
			cast.Name, cast.Time, cast.Latitude, cast.Longitude, len(cast.Depths))
		if store == nil {
			continue
		}
		rec := &sqlite.CastRecord{
			Name:       cast.Name,
			SourceFile: file.Name,
			CastTime:   cast.Time,
			Latitude:   cast.Latitude,
			Longitude:  cast.Longitude,
			Cast:       cast,
		}
		if err := store.Insert(rec); err != nil {
			return err
		}
		log.Printf("  stored as %s", rec.CastID)
	}
	return nil
}

// runDescription is the on-disk description of a correction run: a cast
// (inline, from a profile file, or the stored cast nearest the first ping),
// optional attitude and mounting records for beam vector construction, and
// the chunks to correct.
type runDescription struct {
	CastFile string         `json:"cast_file,omitempty"`
	Cast     *inlineCast    `json:"cast,omitempty"`
	Attitude []attitudeDesc `json:"attitude,omitempty"`
	Mounting *mountingDesc  `json:"mounting,omitempty"`
	Chunks   []chunkDesc    `json:"chunks"`
}

type inlineCast struct {
	Depths      []float64 `json:"depths"`
	SoundSpeeds []float64 `json:"sound_speeds"`
}

// attitudeDesc is one attitude sensor record, angles in degrees. Records
// must be in ascending time order.
type attitudeDesc struct {
	Time    float64 `json:"time"`
	Roll    float64 `json:"roll"`
	Pitch   float64 `json:"pitch"`
	Heading float64 `json:"heading"`
	Heave   float64 `json:"heave,omitempty"`
}

// mountingDesc is the static sensor installation offset, angles in degrees.
type mountingDesc struct {
	Roll      float64 `json:"roll"`
	Pitch     float64 `json:"pitch"`
	Yaw       float64 `json:"yaw"`
	Timestamp string  `json:"timestamp"`
}

// chunkDesc carries one chunk's beam geometry as flat ping-major arrays. A
// chunk comes in one of two forms: with azimuth set, beam_angle and azimuth
// are radians out of an upstream beam vector stage; with tilt_angle set,
// beam_angle and tilt_angle are raw steering angles in degrees and the run
// description's attitude and mounting records drive beam vector construction
// here. A false entry in valid marks an absent beam.
type chunkDesc struct {
	Pings      int       `json:"pings"`
	Beams      int       `json:"beams"`
	PingTimes  []float64 `json:"ping_times"`
	SSV        []float64 `json:"ssv"`
	BeamAngle  []float64 `json:"beam_angle"`
	Azimuth    []float64 `json:"azimuth,omitempty"`
	TiltAngle  []float64 `json:"tilt_angle,omitempty"`
	TravelTime []float64 `json:"travel_time"`
	Valid      []bool    `json:"valid,omitempty"`
}

type chunkReport struct {
	Chunk      int             `json:"chunk"`
	PingOffset int             `json:"ping_offset"`
	Error      string          `json:"error,omitempty"`
	Along      []float64       `json:"along,omitempty"`
	Across     []float64       `json:"across,omitempty"`
	Depth      []float64       `json:"depth,omitempty"`
	Valid      []bool          `json:"valid,omitempty"`
	Stats      *raytrace.Stats `json:"stats,omitempty"`
}

func runCorrection(cfg *config.ProcessConfig) error {
	data, err := os.ReadFile(*runFile)
	if err != nil {
		return fmt.Errorf("read run file: %w", err)
	}
	var desc runDescription
	if err := json.Unmarshal(data, &desc); err != nil {
		return fmt.Errorf("parse run file: %w", err)
	}
	if len(desc.Chunks) == 0 {
		return fmt.Errorf("run file names no chunks")
	}

	cast, err := resolveCast(&desc)
	if err != nil {
		return err
	}

	// Large chunks split into runs of at most chunk_size pings, so the worker
	// pool stays busy regardless of how the run file batched its pings.
	type workItem struct {
		chunk      int
		pingOffset int
	}
	var work []raytrace.Chunk
	var items []workItem
	for i, cd := range desc.Chunks {
		ch, err := buildChunk(&desc, cd, cast, cfg)
		if err != nil {
			return fmt.Errorf("chunk %d: %w", i, err)
		}
		offset := 0
		for _, sub := range ch.Split(cfg.GetChunkSize()) {
			work = append(work, sub)
			items = append(items, workItem{chunk: i, pingOffset: offset})
			offset += sub.BeamAngle.Pings
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := raytrace.Options{MaxLayerGap: cfg.GetMaxLayerGapMeters()}
	outcomes := raytrace.NewRunner(cfg.GetWorkers()).Run(ctx, work, opts)

	var totals raytrace.Stats
	reports := make([]chunkReport, len(outcomes))
	failed := 0
	for _, o := range outcomes {
		rep := chunkReport{Chunk: items[o.Index].chunk, PingOffset: items[o.Index].pingOffset}
		if o.Err != nil {
			rep.Error = o.Err.Error()
			failed++
		} else {
			rep.Along = o.Result.Along.Values
			rep.Across = o.Result.Across.Values
			rep.Depth = o.Result.Depth.Values
			rep.Valid = o.Result.Depth.Valid
			rep.Stats = &o.Result.Stats
			totals.Traced += o.Result.Stats.Traced
			totals.Clipped += o.Result.Stats.Clipped
			totals.AboveTransducer += o.Result.Stats.AboveTransducer
			totals.BeyondCast += o.Result.Stats.BeyondCast
		}
		reports[o.Index] = rep
	}

	log.Printf("Corrected %d chunk(s): %d traced, %d clipped, %d out of range, %d failed chunk(s)",
		len(outcomes), totals.Traced, totals.Clipped, totals.OutOfRange(), failed)

	encoded, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	if *outFile != "" {
		return os.WriteFile(*outFile, append(encoded, '\n'), 0o644)
	}
	fmt.Println(string(encoded))
	return nil
}

func resolveCast(desc *runDescription) (sonar.Cast, error) {
	switch {
	case desc.Cast != nil:
		if len(desc.Cast.Depths) != len(desc.Cast.SoundSpeeds) {
			return sonar.Cast{}, fmt.Errorf("inline cast: %d depths for %d sound speeds",
				len(desc.Cast.Depths), len(desc.Cast.SoundSpeeds))
		}
		return sonar.Cast{
			Name:        "inline",
			Depths:      desc.Cast.Depths,
			SoundSpeeds: desc.Cast.SoundSpeeds,
		}, nil
	case desc.CastFile != "":
		file, err := svp.Load(desc.CastFile)
		if err != nil {
			return sonar.Cast{}, err
		}
		return file.Casts[0], nil
	case *dbFile != "":
		db, err := sqlite.Open(*dbFile)
		if err != nil {
			return sonar.Cast{}, err
		}
		defer db.Close()
		if len(desc.Chunks[0].PingTimes) == 0 {
			return sonar.Cast{}, fmt.Errorf("cast lookup by ping time needs ping_times in the first chunk")
		}
		rec, err := sqlite.NewCastStore(db).Nearest(desc.Chunks[0].PingTimes[0])
		if err != nil {
			return sonar.Cast{}, err
		}
		log.Printf("Using stored cast %s (%s)", rec.Name, rec.CastID)
		return rec.Cast, nil
	default:
		return sonar.Cast{}, fmt.Errorf("no cast: provide cast, cast_file or -db")
	}
}

func buildChunk(desc *runDescription, cd chunkDesc, cast sonar.Cast, cfg *config.ProcessConfig) (raytrace.Chunk, error) {
	n := cd.Pings * cd.Beams
	if len(cd.BeamAngle) != n || len(cd.TravelTime) != n {
		return raytrace.Chunk{}, fmt.Errorf("beam arrays must hold %d values for %d pings x %d beams",
			n, cd.Pings, cd.Beams)
	}
	if cd.Valid != nil && len(cd.Valid) != n {
		return raytrace.Chunk{}, fmt.Errorf("valid mask must hold %d entries", n)
	}

	toArray := func(vals []float64) ragged.Array {
		a := ragged.New(cd.Pings, cd.Beams)
		copy(a.Values, vals)
		for i := range a.Valid {
			a.Valid[i] = cd.Valid == nil || cd.Valid[i]
		}
		return a
	}

	twtt := toArray(cd.TravelTime)
	var angle, azimuth ragged.Array
	switch {
	case cd.TiltAngle != nil:
		if cd.Azimuth != nil {
			return raytrace.Chunk{}, fmt.Errorf("azimuth is computed when tilt_angle is given")
		}
		if len(cd.TiltAngle) != n {
			return raytrace.Chunk{}, fmt.Errorf("tilt_angle must hold %d values", n)
		}
		var err error
		angle, azimuth, err = buildBeamGeometry(desc, cfg, cd, toArray(cd.BeamAngle), toArray(cd.TiltAngle), twtt)
		if err != nil {
			return raytrace.Chunk{}, err
		}
	case len(cd.Azimuth) == n:
		angle = toArray(cd.BeamAngle)
		azimuth = toArray(cd.Azimuth)
	default:
		return raytrace.Chunk{}, fmt.Errorf("chunk needs either azimuth or tilt_angle arrays of %d values", n)
	}

	return raytrace.Chunk{
		PingTimes:       cd.PingTimes,
		SSV:             cd.SSV,
		BeamAngle:       angle,
		Azimuth:         azimuth,
		TravelTime:      twtt,
		Cast:            cast,
		WaterlineOffset: cfg.GetWaterlineOffsetMeters(),
		Lever: sonar.LeverArm{
			Along:  cfg.GetLeverAlongMeters(),
			Across: cfg.GetLeverAcrossMeters(),
			Down:   cfg.GetLeverDownMeters(),
		},
	}, nil
}

// buildBeamGeometry runs the orientation and beam vector stages for a chunk
// described by raw steering angles: attitude and mounting rotations combine
// into per-event element orientations, receive events picking the attitude
// sample at ping time plus half the travel time, and the configured reversal
// flags carry the array installation into the built vectors.
func buildBeamGeometry(desc *runDescription, cfg *config.ProcessConfig, cd chunkDesc, bpa, tilt, twtt ragged.Array) (ragged.Array, ragged.Array, error) {
	if len(desc.Attitude) == 0 || desc.Mounting == nil {
		return ragged.Array{}, ragged.Array{}, fmt.Errorf("tilt_angle requires attitude and mounting records in the run description")
	}
	if len(cd.PingTimes) != cd.Pings {
		return ragged.Array{}, ragged.Array{}, fmt.Errorf("beam vector construction needs one ping_time per ping")
	}

	att := make([]sonar.AttitudeSample, len(desc.Attitude))
	attTimes := make([]float64, len(desc.Attitude))
	for i, a := range desc.Attitude {
		att[i] = sonar.AttitudeSample{
			Time:    a.Time,
			Roll:    a.Roll,
			Pitch:   a.Pitch,
			Heading: a.Heading,
			Heave:   a.Heave,
		}
		attTimes[i] = a.Time
	}

	mount, err := rotation.BuildMounting(sonar.MountingAngles{
		Roll:      desc.Mounting.Roll,
		Pitch:     desc.Mounting.Pitch,
		Yaw:       desc.Mounting.Yaw,
		Timestamp: desc.Mounting.Timestamp,
	})
	if err != nil {
		return ragged.Array{}, ragged.Array{}, err
	}

	txIdx, err := orient.PingSampleIndices(attTimes, cd.PingTimes)
	if err != nil {
		return ragged.Array{}, ragged.Array{}, err
	}
	txAtt, err := rotation.AttitudeRotation(att, txIdx)
	if err != nil {
		return ragged.Array{}, ragged.Array{}, err
	}
	txRot, err := rotation.Combine(txAtt, mount)
	if err != nil {
		return ragged.Array{}, ragged.Array{}, err
	}

	rxIdx, err := orient.ReceiveSampleIndices(attTimes, cd.PingTimes, twtt)
	if err != nil {
		return ragged.Array{}, ragged.Array{}, err
	}
	rxAtt, err := rotation.AttitudeRotation(att, rxIdx)
	if err != nil {
		return ragged.Array{}, ragged.Array{}, err
	}
	rxRot, err := rotation.Combine(rxAtt, mount)
	if err != nil {
		return ragged.Array{}, ragged.Array{}, err
	}
	rxVecs, err := orient.ReceiveVectors(rxRot, cd.Pings, cd.Beams, bpa.Valid)
	if err != nil {
		return ragged.Array{}, ragged.Array{}, err
	}

	heading := make([]float64, cd.Pings)
	for p, i := range txIdx {
		heading[p] = att[i].Heading
	}

	res, err := beamvec.Build(beamvec.Input{
		Heading:    heading,
		BeamAngle:  bpa,
		TiltAngle:  tilt,
		TxVectors:  orient.TransmitVectors(txRot),
		RxVectors:  rxVecs,
		TxReversed: cfg.GetTxReversed(),
		RxReversed: cfg.GetRxReversed(),
	})
	if err != nil {
		return ragged.Array{}, ragged.Array{}, err
	}
	return res.BeamAngle, res.Azimuth, nil
}

package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hydrophase/svtrace/internal/sonar"
)

// CastRecord is a stored sound velocity cast. Layers are kept as a JSON
// array of [depth, soundspeed] pairs, the same shape the inline per-chunk
// cast attachment uses.
type CastRecord struct {
	CastID      string     `json:"cast_id"`
	Name        string     `json:"name"`
	SourceFile  string     `json:"source_file,omitempty"`
	CastTime    float64    `json:"cast_time"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	Cast        sonar.Cast `json:"-"`
	CreatedAtNs int64      `json:"created_at_ns"`
}

// CastStore provides persistence for sound velocity casts.
type CastStore struct {
	db *DB
}

// NewCastStore creates a CastStore over db.
func NewCastStore(db *DB) *CastStore {
	return &CastStore{db: db}
}

// Insert stores a cast record. An empty CastID gets a new UUID.
func (s *CastStore) Insert(rec *CastRecord) error {
	if rec.CastID == "" {
		rec.CastID = uuid.New().String()
	}
	if rec.CreatedAtNs == 0 {
		rec.CreatedAtNs = time.Now().UnixNano()
	}

	layers, err := marshalLayers(rec.Cast)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO casts (
			cast_id, name, source_file, cast_time, latitude, longitude,
			layers_json, created_at_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.Exec(query,
		rec.CastID,
		rec.Name,
		rec.SourceFile,
		rec.CastTime,
		rec.Latitude,
		rec.Longitude,
		layers,
		rec.CreatedAtNs,
	)
	if err != nil {
		return fmt.Errorf("insert cast: %w", err)
	}
	return nil
}

// Get retrieves a cast by ID.
func (s *CastStore) Get(castID string) (*CastRecord, error) {
	query := `
		SELECT cast_id, name, source_file, cast_time, latitude, longitude,
		       layers_json, created_at_ns
		FROM casts
		WHERE cast_id = ?
	`
	return s.scanOne(s.db.QueryRow(query, castID))
}

// Nearest returns the stored cast whose cast time is closest to t.
func (s *CastStore) Nearest(t float64) (*CastRecord, error) {
	query := `
		SELECT cast_id, name, source_file, cast_time, latitude, longitude,
		       layers_json, created_at_ns
		FROM casts
		ORDER BY ABS(cast_time - ?) ASC
		LIMIT 1
	`
	return s.scanOne(s.db.QueryRow(query, t))
}

// List returns all stored casts ordered by cast time.
func (s *CastStore) List() ([]*CastRecord, error) {
	query := `
		SELECT cast_id, name, source_file, cast_time, latitude, longitude,
		       layers_json, created_at_ns
		FROM casts
		ORDER BY cast_time ASC
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list casts: %w", err)
	}
	defer rows.Close()

	var out []*CastRecord
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list casts: %w", err)
	}
	return out, nil
}

// Delete removes a cast by ID.
func (s *CastStore) Delete(castID string) error {
	res, err := s.db.Exec(`DELETE FROM casts WHERE cast_id = ?`, castID)
	if err != nil {
		return fmt.Errorf("delete cast: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete cast: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("cast not found: %s", castID)
	}
	return nil
}

func (s *CastStore) scanOne(row *sql.Row) (*CastRecord, error) {
	rec, err := scanRecord(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("cast not found")
	}
	return rec, err
}

func scanRecord(scan func(...interface{}) error) (*CastRecord, error) {
	var rec CastRecord
	var sourceFile sql.NullString
	var layers string

	err := scan(
		&rec.CastID,
		&rec.Name,
		&sourceFile,
		&rec.CastTime,
		&rec.Latitude,
		&rec.Longitude,
		&layers,
		&rec.CreatedAtNs,
	)
	if err != nil {
		return nil, err
	}
	if sourceFile.Valid {
		rec.SourceFile = sourceFile.String
	}

	cast, err := unmarshalLayers(layers)
	if err != nil {
		return nil, err
	}
	cast.Name = rec.Name
	cast.Time = rec.CastTime
	cast.Latitude = rec.Latitude
	cast.Longitude = rec.Longitude
	rec.Cast = cast
	return &rec, nil
}

func marshalLayers(c sonar.Cast) (string, error) {
	pairs := make([][2]float64, len(c.Depths))
	for i := range c.Depths {
		pairs[i] = [2]float64{c.Depths[i], c.SoundSpeeds[i]}
	}
	b, err := json.Marshal(pairs)
	if err != nil {
		return "", fmt.Errorf("marshal cast layers: %w", err)
	}
	return string(b), nil
}

func unmarshalLayers(s string) (sonar.Cast, error) {
	var pairs [][2]float64
	if err := json.Unmarshal([]byte(s), &pairs); err != nil {
		return sonar.Cast{}, fmt.Errorf("unmarshal cast layers: %w", err)
	}
	c := sonar.Cast{
		Depths:      make([]float64, len(pairs)),
		SoundSpeeds: make([]float64, len(pairs)),
	}
	for i, p := range pairs {
		c.Depths[i] = p[0]
		c.SoundSpeeds[i] = p[1]
	}
	return c, nil
}

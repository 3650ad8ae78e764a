package sink

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/ghalamif/giosaqi/internal/domain"
	"github.com/ghalamif/giosaqi/internal/ports"
)

// TimescaleSink keeps a reading history in a (Timescale) Postgres table.
// Samples in the unknown state are not stored.
type TimescaleSink struct {
	db        *sql.DB
	tableName string
}

func NewTimescaleSink(db *sql.DB, table string) *TimescaleSink {
	return &TimescaleSink{db: db, tableName: table}
}

func (t *TimescaleSink) Name() string { return "timescaledb" }

func (t *TimescaleSink) WriteBatch(samples []*domain.Sample) error {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(t.tableName)
	b.WriteString(" (sensor_id, station_id, param_code, ts, value) VALUES ")

	args := make([]any, 0, len(samples)*5)
	for _, s := range samples {
		if s == nil || !s.Valid {
			continue
		}
		if len(args) > 0 {
			b.WriteString(",")
		}
		b.WriteString(fmt.Sprintf("($%d,$%d,$%d,$%d,$%d)",
			len(args)+1, len(args)+2, len(args)+3, len(args)+4, len(args)+5))
		args = append(args,
			s.SensorID,
			s.StationID,
			s.ParamCode,
			s.Timestamp,
			s.Value,
		)
	}
	if len(args) == 0 {
		return nil
	}

	// the API repeats the same hourly value every refresh
	b.WriteString(" ON CONFLICT (sensor_id, ts) DO NOTHING")

	_, err := t.db.Exec(b.String(), args...)
	return err
}

var _ ports.Sink = (*TimescaleSink)(nil)

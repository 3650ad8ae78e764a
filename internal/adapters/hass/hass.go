package hass

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/ghalamif/giosaqi/internal/domain"
	"github.com/ghalamif/giosaqi/internal/ports"
)

// Config describes the MQTT broker and topic layout.
type Config struct {
	Broker          string        `yaml:"broker"`
	ClientID        string        `yaml:"client_id"`
	Username        string        `yaml:"username"`
	Password        string        `yaml:"password"`
	TopicPrefix     string        `yaml:"topic_prefix"`
	DiscoveryPrefix string        `yaml:"discovery_prefix"`
	QoS             byte          `yaml:"qos"`
	Timeout         time.Duration `yaml:"timeout"`
}

func (c *Config) ApplyDefaults() {
	if c.ClientID == "" {
		c.ClientID = "giosaqi-" + uuid.NewString()
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "giosaqi"
	}
	if c.DiscoveryPrefix == "" {
		c.DiscoveryPrefix = "homeassistant"
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
}

func (c *Config) Validate() error {
	if c.QoS > 2 {
		return fmt.Errorf("qos must be 0, 1 or 2, got %d", c.QoS)
	}
	return nil
}

// Enabled reports whether a broker was configured.
func (c *Config) Enabled() bool { return c.Broker != "" }

// Publisher is the subset of mqtt.Client used by the sink.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

type discoveryConfig struct {
	Name              string          `json:"name"`
	UniqueID          string          `json:"uniq_id,omitempty"`
	StateTopic        string          `json:"stat_t"`
	Availability      []availability  `json:"avty"`
	AvailabilityMode  string          `json:"avty_mode"`
	UnitOfMeasurement string          `json:"unit_of_meas"`
	StateClass        string          `json:"stat_cla"`
	Icon              string          `json:"ic"`
	Device            discoveryDevice `json:"dev"`
}

type availability struct {
	Topic string `json:"topic"`
}

type discoveryDevice struct {
	IDs          string `json:"ids"`
	Name         string `json:"name"`
	Manufacturer string `json:"mf"`
}

// StateSink mirrors sensor entities to Home Assistant over MQTT discovery.
type StateSink struct {
	pub     Publisher
	cfg     Config
	objects map[string]string
}

func NewStateSink(pub Publisher, cfg Config) *StateSink {
	cfg.ApplyDefaults()
	return &StateSink{pub: pub, cfg: cfg, objects: map[string]string{}}
}

// Connect dials the broker described by cfg. The last will sets the client
// status topic to "offline", which every announced entity lists as one of
// its availability topics.
func Connect(cfg Config) (mqtt.Client, error) {
	cfg.ApplyDefaults()
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(cfg.Timeout).
		SetWill(statusTopic(cfg), "offline", cfg.QoS, true)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username).SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	tok := client.Connect()
	if !tok.WaitTimeout(cfg.Timeout) {
		return nil, fmt.Errorf("mqtt connect %s: timed out after %s", cfg.Broker, cfg.Timeout)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.Broker, err)
	}
	if err := waitToken(client.Publish(statusTopic(cfg), cfg.QoS, true, "online"), cfg.Timeout); err != nil {
		client.Disconnect(250)
		return nil, err
	}
	return client, nil
}

func (s *StateSink) Name() string { return "mqtt" }

// Announce publishes a retained discovery config for every entity.
func (s *StateSink) Announce(entities []domain.Entity) error {
	var errs []error
	for _, e := range entities {
		obj := objectID(e)
		s.objects[e.Name] = obj

		payload, err := json.Marshal(discoveryConfig{
			Name:              e.Name,
			UniqueID:          uniqueID(e),
			StateTopic:        s.stateTopic(obj),
			Availability: []availability{
				{Topic: statusTopic(s.cfg)},
				{Topic: s.availabilityTopic(obj)},
			},
			AvailabilityMode:  "all",
			UnitOfMeasurement: e.Unit,
			StateClass:        "measurement",
			Icon:              e.Icon,
			Device: discoveryDevice{
				IDs:          "gios_station_" + strconv.FormatInt(e.StationID, 10),
				Name:         e.StationName,
				Manufacturer: "GIOS",
			},
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		topic := fmt.Sprintf("%s/sensor/%s/config", s.cfg.DiscoveryPrefix, obj)
		if err := waitToken(s.pub.Publish(topic, s.cfg.QoS, true, payload), s.cfg.Timeout); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WriteBatch publishes each sample as entity state. Unknown states flip the
// entity to unavailable instead of sending a non-numeric value.
func (s *StateSink) WriteBatch(samples []*domain.Sample) error {
	var errs []error
	for _, smp := range samples {
		obj, ok := s.objects[smp.Name]
		if !ok {
			obj = objectID(domain.Entity{UniqueID: smp.SensorID, Name: smp.Name})
		}

		if !smp.Valid {
			if err := waitToken(s.pub.Publish(s.availabilityTopic(obj), s.cfg.QoS, true, "offline"), s.cfg.Timeout); err != nil {
				errs = append(errs, err)
			}
			continue
		}

		state := strconv.FormatFloat(smp.Value, 'f', 1, 64)
		if err := waitToken(s.pub.Publish(s.stateTopic(obj), s.cfg.QoS, true, state), s.cfg.Timeout); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := waitToken(s.pub.Publish(s.availabilityTopic(obj), s.cfg.QoS, true, "online"), s.cfg.Timeout); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func statusTopic(cfg Config) string {
	return cfg.TopicPrefix + "/status"
}

func (s *StateSink) stateTopic(obj string) string {
	return s.cfg.TopicPrefix + "/" + obj + "/state"
}

func (s *StateSink) availabilityTopic(obj string) string {
	return s.cfg.TopicPrefix + "/" + obj + "/availability"
}

func waitToken(tok mqtt.Token, timeout time.Duration) error {
	if !tok.WaitTimeout(timeout) {
		return fmt.Errorf("mqtt publish: timed out after %s", timeout)
	}
	return tok.Error()
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func objectID(e domain.Entity) string {
	if e.UniqueID != "" {
		return "gios_" + e.UniqueID
	}
	return "gios_" + strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(e.Name), "_"), "_")
}

func uniqueID(e domain.Entity) string {
	if e.UniqueID == "" {
		return ""
	}
	return "gios_" + e.UniqueID
}

var (
	_ ports.Sink      = (*StateSink)(nil)
	_ ports.Announcer = (*StateSink)(nil)
)

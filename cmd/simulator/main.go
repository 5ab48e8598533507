package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/pantry-finder/internal/location"
	"github.com/ukydev/pantry-finder/internal/models"
)

// Places around the Triangle for realistic walks
var places = []models.Coordinate{
	{Latitude: 35.9940, Longitude: -78.8986}, // Downtown Durham
	{Latitude: 36.0014, Longitude: -78.9382}, // Duke East Campus
	{Latitude: 35.9132, Longitude: -79.0558}, // Chapel Hill
	{Latitude: 35.7796, Longitude: -78.6382}, // Raleigh
	{Latitude: 35.7915, Longitude: -78.7811}, // Cary
	{Latitude: 35.9101, Longitude: -78.8748}, // Research Triangle Park
}

// Publisher is the part of mqtt.Client the simulator uses.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// DeviceState is the simulated phone.
type DeviceState struct {
	Position   models.Coordinate
	Target     models.Coordinate
	SpeedKmh   float64
	CoarseRate float64 // fraction of fixes reported with poor accuracy
	Denied     bool
}

func jitterLocation(base models.Coordinate, meters float64) models.Coordinate {
	latMetersPerDeg := 111320.0
	lonMetersPerDeg := 111320.0 * math.Cos(base.Latitude*math.Pi/180)
	dLat := (rand.Float64()*2 - 1) * (meters / latMetersPerDeg)
	dLon := (rand.Float64()*2 - 1) * (meters / lonMetersPerDeg)
	return models.Coordinate{Latitude: base.Latitude + dLat, Longitude: base.Longitude + dLon}
}

func randomLocation() models.Coordinate {
	base := places[rand.Intn(len(places))]
	return jitterLocation(base, 500) // start close to streets
}

func haversineKm(a, b models.Coordinate) float64 {
	R := 6371.0
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	s := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(s), math.Sqrt(1-s))
	return R * c
}

func lerp(a, b models.Coordinate, t float64) models.Coordinate {
	return models.Coordinate{
		Latitude:  a.Latitude + (b.Latitude-a.Latitude)*t,
		Longitude: a.Longitude + (b.Longitude-a.Longitude)*t,
	}
}

// step moves the device toward its target, picking a new target on arrival.
func step(s *DeviceState, tickSec float64) {
	remKm := s.SpeedKmh * (tickSec / 3600.0)
	leftKm := haversineKm(s.Position, s.Target)
	if leftKm <= remKm || leftKm == 0 {
		s.Position = s.Target
		s.Target = randomLocation()
		return
	}
	s.Position = lerp(s.Position, s.Target, remKm/leftKm)
}

// nextFix reports the device position as the platform would.
func nextFix(s *DeviceState) location.Fix {
	if s.Denied {
		return location.Fix{Authorization: location.Denied.String()}
	}
	reported := s.Position
	accuracy := 5 + rand.Float64()*45
	if rand.Float64() < s.CoarseRate {
		accuracy = 500 + rand.Float64()*1500
		reported = jitterLocation(s.Position, accuracy)
	}
	lat, lon := reported.Latitude, reported.Longitude
	return location.Fix{
		Authorization:  location.AuthorizedWhenInUse.String(),
		Latitude:       &lat,
		Longitude:      &lon,
		AccuracyMeters: &accuracy,
	}
}

func publishFix(pub Publisher, topic string, fix location.Fix) error {
	data, err := json.Marshal(fix)
	if err != nil {
		return fmt.Errorf("failed to marshal fix: %w", err)
	}
	token := pub.Publish(topic, 1, false, data)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish to %s timed out", topic)
	}
	return token.Error()
}

func simulateDevice(ctx context.Context, pub Publisher, topic string, s *DeviceState, interval time.Duration) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}

		// small speed noise
		s.SpeedKmh += (rand.Float64()*2 - 1) * 0.5
		if s.SpeedKmh < 3 {
			s.SpeedKmh = 3
		}
		if s.SpeedKmh > 40 {
			s.SpeedKmh = 40
		}
		step(s, interval.Seconds())

		fix := nextFix(s)
		if err := publishFix(pub, topic, fix); err != nil {
			log.WithError(err).Error("Failed to publish fix")
			continue
		}
		fields := log.Fields{"topic": topic, "authorization": fix.Authorization}
		if fix.AccuracyMeters != nil {
			fields["accuracy_meters"] = math.Round(*fix.AccuracyMeters)
		}
		log.WithFields(fields).Info("Published fix")
	}
}

// createSession starts a presentation session on the server.
func createSession(apiURL string) (string, string, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(apiURL+"/sessions", "application/json", nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to create session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", "", fmt.Errorf("session creation failed with status: %d", resp.StatusCode)
	}

	var result struct {
		SessionID string `json:"session_id"`
		Token     string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", "", fmt.Errorf("failed to decode response: %w", err)
	}
	if result.SessionID == "" {
		return "", "", fmt.Errorf("invalid session ID in response")
	}
	return result.SessionID, result.Token, nil
}

// settings holds the simulator environment.
type settings struct {
	Broker      string
	TopicPrefix string
	SessionID   string
	APIURL      string
	Interval    time.Duration
	CoarseRate  float64
}

func loadSettings() settings {
	s := settings{
		Broker:      os.Getenv("MQTT_BROKER"),
		TopicPrefix: os.Getenv("MQTT_TOPIC_PREFIX"),
		SessionID:   os.Getenv("SESSION_ID"),
		APIURL:      os.Getenv("API_BASE_URL"),
		Interval:    2 * time.Second,
		CoarseRate:  0.2,
	}
	if s.Broker == "" {
		s.Broker = "tcp://localhost:1883"
	}
	if s.TopicPrefix == "" {
		s.TopicPrefix = "pantries/location"
	}
	if s.APIURL == "" {
		s.APIURL = "http://localhost:8080/api"
	}
	if v := os.Getenv("SIM_TICK_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			s.Interval = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("SIM_COARSE_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			s.CoarseRate = f
		}
	}
	return s
}

func main() {
	cfg := loadSettings()

	if cfg.SessionID == "" {
		id, token, err := createSession(cfg.APIURL)
		if err != nil {
			log.WithError(err).Fatal("No SESSION_ID given and session creation failed")
		}
		cfg.SessionID = id
		log.WithFields(log.Fields{"session_id": id, "token": token}).Info("Created session")
	}

	client, err := location.ConnectMQTT(cfg.Broker, "pantry-simulator-"+cfg.SessionID, 10*time.Second)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MQTT broker")
	}
	defer client.Disconnect(250)

	topic := cfg.TopicPrefix + "/" + cfg.SessionID
	log.WithFields(log.Fields{
		"broker":      cfg.Broker,
		"topic":       topic,
		"interval":    cfg.Interval,
		"coarse_rate": cfg.CoarseRate,
	}).Info("Starting device simulation")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	state := &DeviceState{
		Position:   randomLocation(),
		Target:     randomLocation(),
		SpeedKmh:   5 + rand.Float64()*10,
		CoarseRate: cfg.CoarseRate,
	}
	simulateDevice(ctx, client, topic, state, cfg.Interval)
	log.Info("Device simulation stopped")
}

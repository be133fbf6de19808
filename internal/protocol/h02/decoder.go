package h02

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"scouttrack/internal/core/model"
)

var (
	ErrInvalidHeader      = errors.New("invalid H02 protocol header")
	ErrPacketTooShort     = errors.New("data too short for H02 protocol")
	ErrInvalidFormat      = errors.New("invalid H02 data format")
	ErrInvalidCoordinate  = errors.New("invalid H02 coordinate")
	ErrInvalidMessageType = errors.New("unsupported H02 message type")
)

type Decoder struct{}

func NewDecoder() *Decoder {
	return &Decoder{}
}

type H02Data struct {
	DeviceID  string
	Type      string
	Valid     bool
	Latitude  float64
	Longitude float64
	Speed     float64 // km/h
	Course    float64
	Timestamp time.Time
	Status    uint32
	SOS       bool
	Battery   *int
}

// H02 protocol constants
const (
	startSequence = "*HQ"
	terminator    = "#"
	minLength     = 10

	// Position report; the alarm report has the same layout.
	positionReport = "V1"
	alarmReport    = "SOS"

	// Status word bits are active-low.
	sosBit = 1

	knotsToKmh = 1.852
)

// field positions after splitting on ','
const (
	fieldDevice = 1 + iota
	fieldType
	fieldTime
	fieldValidity
	fieldLat
	fieldLatHemi
	fieldLon
	fieldLonHemi
	fieldSpeed
	fieldCourse
	fieldDate
	fieldStatus
)

// Decode parses one H02 message, with or without its trailing '#'.
func (d *Decoder) Decode(data []byte) (*H02Data, error) {
	data = bytes.TrimSpace(data)
	if len(data) < minLength {
		return nil, ErrPacketTooShort
	}

	if !bytes.HasPrefix(data, []byte(startSequence)) {
		return nil, ErrInvalidHeader
	}

	parts := strings.Split(strings.TrimSuffix(string(data), terminator), ",")
	if len(parts) <= fieldType {
		return nil, ErrInvalidFormat
	}

	switch parts[fieldType] {
	case positionReport, alarmReport:
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidMessageType, parts[fieldType])
	}

	if len(parts) <= fieldStatus {
		return nil, ErrInvalidFormat
	}
	return d.decodePosition(parts)
}

func (d *Decoder) decodePosition(parts []string) (*H02Data, error) {
	result := &H02Data{
		DeviceID: parts[fieldDevice],
		Type:     parts[fieldType],
		Valid:    parts[fieldValidity] == "A",
	}
	if result.DeviceID == "" {
		return nil, fmt.Errorf("%w: empty device id", ErrInvalidFormat)
	}

	lat, err := parseCoordinate(parts[fieldLat], parts[fieldLatHemi], "N", "S", 90)
	if err != nil {
		return nil, fmt.Errorf("latitude: %w", err)
	}
	result.Latitude = lat

	lon, err := parseCoordinate(parts[fieldLon], parts[fieldLonHemi], "E", "W", 180)
	if err != nil {
		return nil, fmt.Errorf("longitude: %w", err)
	}
	result.Longitude = lon

	// Speed is reported in knots.
	if speed, err := strconv.ParseFloat(parts[fieldSpeed], 64); err == nil {
		result.Speed = speed * knotsToKmh
	}
	if course, err := strconv.ParseFloat(parts[fieldCourse], 64); err == nil {
		result.Course = course
	}

	ts, err := parseTimestamp(parts[fieldTime], parts[fieldDate])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	result.Timestamp = ts

	status, err := strconv.ParseUint(parts[fieldStatus], 16, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: status %q", ErrInvalidFormat, parts[fieldStatus])
	}
	result.Status = uint32(status)
	result.SOS = result.Type == alarmReport || result.Status&(1<<sosBit) == 0

	if len(parts) > fieldStatus+1 {
		if battery, ok := parseBatteryLevel(parts[len(parts)-1]); ok {
			result.Battery = &battery
		}
	}

	return result, nil
}

// parseCoordinate converts (D)DDMM.MMMM plus hemisphere to signed decimal
// degrees.
func parseCoordinate(coord, hemi, pos, neg string, limit float64) (float64, error) {
	v, err := strconv.ParseFloat(coord, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCoordinate, coord)
	}
	degrees := math.Floor(v / 100)
	minutes := v - degrees*100
	if minutes >= 60 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCoordinate, coord)
	}
	result := degrees + minutes/60
	if result > limit {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidCoordinate, coord)
	}

	switch hemi {
	case pos:
	case neg:
		result = -result
	default:
		return 0, fmt.Errorf("%w: hemisphere %q", ErrInvalidCoordinate, hemi)
	}
	return result, nil
}

func parseTimestamp(hhmmss, ddmmyy string) (time.Time, error) {
	return time.ParseInLocation("150405 020106", hhmmss+" "+ddmmyy, time.UTC)
}

// Parse battery level (0-100)
func parseBatteryLevel(battery string) (int, bool) {
	val, err := strconv.Atoi(battery)
	if err != nil || val < 0 {
		return 0, false
	}
	if val > 100 {
		val = 100
	}
	return val, true
}

// ToFix converts decoded data into a fix for ingestion.
func (d *Decoder) ToFix(data *H02Data) model.Fix {
	return model.Fix{
		Position: model.NewPosition(data.Latitude, data.Longitude, data.Timestamp),
		Speed:    data.Speed,
		Course:   data.Course,
		Battery:  data.Battery,
		SOS:      data.SOS,
	}
}

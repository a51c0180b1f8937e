package track

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"backend-racehub/internal/shared"
)

const (
	nameColumn        = "name"
	coordinatesColumn = "coordinates_list"
)

// ParseCoordinates decodes a string-encoded list of "lon,lat" tokens such as
// ['7.42,43.73', '7.43,43.74'] into lat/lng points. Extra components after
// lon,lat (altitude) are ignored.
func ParseCoordinates(raw string) ([]Point, error) {
	s := strings.TrimSpace(raw)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, fmt.Errorf("%w: expected bracketed list", shared.ErrInvalidCoordinates)
	}
	s = s[1 : len(s)-1]

	points := []Point{}
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == ',':
			i++
		case c == '\'' || c == '"':
			end := strings.IndexByte(s[i+1:], c)
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated token at offset %d", shared.ErrInvalidCoordinates, i)
			}
			p, err := parseToken(s[i+1 : i+1+end])
			if err != nil {
				return nil, err
			}
			points = append(points, p)
			i += end + 2
		default:
			return nil, fmt.Errorf("%w: unexpected %q at offset %d", shared.ErrInvalidCoordinates, c, i)
		}
	}
	return points, nil
}

func parseToken(token string) (Point, error) {
	parts := strings.Split(token, ",")
	if len(parts) < 2 {
		return Point{}, fmt.Errorf("%w: token %q", shared.ErrInvalidCoordinates, token)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Point{}, fmt.Errorf("%w: longitude %q", shared.ErrInvalidCoordinates, parts[0])
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Point{}, fmt.Errorf("%w: latitude %q", shared.ErrInvalidCoordinates, parts[1])
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return Point{}, fmt.Errorf("%w: %q out of range", shared.ErrInvalidCoordinates, token)
	}
	return Point{Lat: lat, Lng: lng}, nil
}

// LoadCSV reads tracks from a CSV with name and coordinates_list columns.
// Column order is free and extra columns are ignored. When a name repeats,
// the first row wins.
func LoadCSV(r io.Reader) ([]Track, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	nameIdx, coordsIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")) {
		case nameColumn:
			nameIdx = i
		case coordinatesColumn:
			coordsIdx = i
		}
	}
	if nameIdx < 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrMissingColumn, nameColumn)
	}
	if coordsIdx < 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrMissingColumn, coordinatesColumn)
	}

	var tracks []Track
	seen := map[string]struct{}{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		if nameIdx >= len(record) || coordsIdx >= len(record) {
			return nil, fmt.Errorf("line %d: %w", line, shared.ErrMissingColumn)
		}

		name := strings.TrimSpace(record[nameIdx])
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		points, err := ParseCoordinates(record[coordsIdx])
		if err != nil {
			return nil, fmt.Errorf("line %d (%s): %w", line, name, err)
		}
		seen[name] = struct{}{}
		tracks = append(tracks, Track{Name: name, Points: points})
	}
	return tracks, nil
}

func LoadCSVFile(path string) ([]Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tracks csv: %w", err)
	}
	defer f.Close()
	return LoadCSV(f)
}

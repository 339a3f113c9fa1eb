package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	handlers "github.com/oksasatya/six-cities-api/internal/interface/http"
	"github.com/oksasatya/six-cities-api/pkg/validation"
)

// tsvColumns is the column order of the import file. The first line is a header.
var tsvColumns = []string{
	"name", "description", "publishDate", "city", "previewImage", "photos", "isPremium",
	"isFavorite", "rating", "type", "rooms", "guests", "price", "amenities", "author", "coordinates",
}

type importRow struct {
	Line        int
	Offer       handlers.CreateOfferDto
	PublishDate time.Time
	AuthorEmail string
}

func parseBool(s string) bool {
	s = strings.TrimSpace(s)
	return s == "Да" || strings.EqualFold(s, "true")
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ";") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseCoordinates(s string) (*handlers.CoordinatesDto, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("coordinates %q: want lat,lng", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, fmt.Errorf("latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("longitude: %w", err)
	}
	return &handlers.CoordinatesDto{Latitude: lat, Longitude: lng}, nil
}

func atoi(field, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return n, nil
}

// parseRow turns one TSV line into a validated offer request.
// rating and isFavorite are read for format compatibility; both are derived at runtime.
func parseRow(line string) (handlers.CreateOfferDto, time.Time, string, error) {
	var dto handlers.CreateOfferDto
	cols := strings.Split(line, "\t")
	if len(cols) != len(tsvColumns) {
		return dto, time.Time{}, "", fmt.Errorf("want %d columns, got %d", len(tsvColumns), len(cols))
	}
	col := func(name string) string {
		for i, c := range tsvColumns {
			if c == name {
				return strings.TrimSpace(cols[i])
			}
		}
		return ""
	}

	published, err := time.Parse(time.RFC3339, col("publishDate"))
	if err != nil {
		return dto, time.Time{}, "", fmt.Errorf("publishDate: %w", err)
	}
	rooms, err := atoi("rooms", col("rooms"))
	if err != nil {
		return dto, time.Time{}, "", err
	}
	guests, err := atoi("guests", col("guests"))
	if err != nil {
		return dto, time.Time{}, "", err
	}
	price, err := atoi("price", col("price"))
	if err != nil {
		return dto, time.Time{}, "", err
	}
	coords, err := parseCoordinates(col("coordinates"))
	if err != nil {
		return dto, time.Time{}, "", err
	}

	dto = handlers.CreateOfferDto{
		Title:        col("name"),
		Description:  col("description"),
		City:         col("city"),
		PreviewImage: col("previewImage"),
		Images:       splitList(col("photos")),
		IsPremium:    parseBool(col("isPremium")),
		Type:         col("type"),
		Bedrooms:     rooms,
		MaxAdults:    guests,
		Price:        price,
		Amenities:    splitList(col("amenities")),
		Coordinates:  coords,
	}
	if errs := validation.Validate(&dto); len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Message)
		}
		return dto, time.Time{}, "", fmt.Errorf("invalid offer: %s", strings.Join(msgs, "; "))
	}
	return dto, published.UTC(), col("author"), nil
}

// readTSV parses every data line of r. Bad lines are reported in errs and skipped.
func readTSV(r io.Reader) (rows []importRow, errs []error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64<<10), 1<<20)
	n := 0
	for sc.Scan() {
		n++
		if n == 1 {
			continue
		}
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		dto, published, author, err := parseRow(line)
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", n, err))
			continue
		}
		rows = append(rows, importRow{Line: n, Offer: dto, PublishDate: published, AuthorEmail: author})
	}
	if err := sc.Err(); err != nil {
		errs = append(errs, err)
	}
	return rows, errs
}

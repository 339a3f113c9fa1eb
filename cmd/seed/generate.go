package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// mockVariants is how many distinct offers the mock server exposes under <url>/<n>.
const mockVariants = 8

// mockOffer is the JSON served by the mock data server.
type mockOffer struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	PublishDate  time.Time       `json:"publishDate"`
	City         string          `json:"city"`
	PreviewImage string          `json:"previewImage"`
	Photos       []string        `json:"photos"`
	IsPremium    bool            `json:"isPremium"`
	IsFavorite   bool            `json:"isFavorite"`
	Rating       float64         `json:"rating"`
	Type         string          `json:"type"`
	Rooms        int             `json:"rooms"`
	Guests       int             `json:"guests"`
	Price        int             `json:"price"`
	Amenities    []string        `json:"amenities"`
	Author       string          `json:"author"`
	Coordinates  mockCoordinates `json:"coordinates"`
}

// mockCoordinates accepts {"lat":..,"lng":..} as well as the "lat,lng" string form.
type mockCoordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (m *mockCoordinates) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		c, err := parseCoordinates(s)
		if err != nil {
			return err
		}
		m.Lat, m.Lng = c.Latitude, c.Longitude
		return nil
	}
	type plain mockCoordinates
	return json.Unmarshal(b, (*plain)(m))
}

type generator struct {
	Client  *http.Client
	BaseURL string
	Rand    *rand.Rand
}

func (g *generator) fetch(ctx context.Context, i int) (*mockOffer, error) {
	url := strings.TrimRight(g.BaseURL, "/") + "/" + strconv.Itoa(i%mockVariants)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	var o mockOffer
	if err := json.NewDecoder(resp.Body).Decode(&o); err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	return &o, nil
}

// generate writes n offers fetched from the mock server as an import file,
// header included. Prices are randomised within the accepted range.
func (g *generator) generate(ctx context.Context, n int, w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(tsvColumns, "\t") + "\n"); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		o, err := g.fetch(ctx, i)
		if err != nil {
			return err
		}
		o.Price = 100 + g.Rand.Intn(900)
		if _, err := bw.WriteString(formatRow(o) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func formatRow(o *mockOffer) string {
	cols := map[string]string{
		"name":         o.Name,
		"description":  o.Description,
		"publishDate":  o.PublishDate.UTC().Format(time.RFC3339),
		"city":         o.City,
		"previewImage": o.PreviewImage,
		"photos":       strings.Join(o.Photos, ";"),
		"isPremium":    strconv.FormatBool(o.IsPremium),
		"isFavorite":   strconv.FormatBool(o.IsFavorite),
		"rating":       strconv.FormatFloat(o.Rating, 'f', -1, 64),
		"type":         o.Type,
		"rooms":        strconv.Itoa(o.Rooms),
		"guests":       strconv.Itoa(o.Guests),
		"price":        strconv.Itoa(o.Price),
		"amenities":    strings.Join(o.Amenities, ";"),
		"author":       o.Author,
		"coordinates":  strconv.FormatFloat(o.Coordinates.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(o.Coordinates.Lng, 'f', -1, 64),
	}
	out := make([]string, len(tsvColumns))
	for i, c := range tsvColumns {
		out[i] = tsvCell(cols[c])
	}
	return strings.Join(out, "\t")
}

// tsvCell keeps free text on one line and inside one column.
func tsvCell(s string) string {
	return strings.NewReplacer("\t", " ", "\r", " ", "\n", " ").Replace(s)
}

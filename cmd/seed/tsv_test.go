package main

import (
	"strings"
	"testing"
	"time"
)

const header = "name\tdescription\tpublishDate\tcity\tpreviewImage\tphotos\tisPremium\tisFavorite\trating\ttype\trooms\tguests\tprice\tamenities\tauthor\tcoordinates"

func row(fields ...string) string { return strings.Join(fields, "\t") }

var validRow = row(
	"Canal house with garden", "Quiet house in the old town, five minutes from the station.",
	"2024-05-01T10:00:00Z", "Amsterdam", "preview.jpg", "1.jpg;2.jpg;3.jpg", "Да",
	"Нет", "4.5", "house", "3", "6", "1200", "Breakfast;Fridge", "host@x.com", "52.370216,4.895168",
)

func TestReadTSV(t *testing.T) {
	bad := row("Short", "too short", "yesterday", "Berlin", "p.jpg", "1.jpg", "false", "false", "1", "castle", "1", "1", "100", "Breakfast", "a@x.com", "1,2")
	input := header + "\n" + validRow + "\r\n\n" + bad + "\n"

	rows, errs := readTSV(strings.NewReader(input))
	if len(rows) != 1 {
		t.Fatalf("rows = %d, errs = %v", len(rows), errs)
	}
	if len(errs) != 1 || !strings.HasPrefix(errs[0].Error(), "line 4:") {
		t.Fatalf("errs = %v", errs)
	}

	r := rows[0]
	if r.Line != 2 || r.AuthorEmail != "host@x.com" {
		t.Fatalf("row = %+v", r)
	}
	if !r.PublishDate.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("publishDate = %v", r.PublishDate)
	}
	o := r.Offer
	if o.Title != "Canal house with garden" || o.City != "Amsterdam" || !o.IsPremium || o.Type != "house" {
		t.Errorf("offer = %+v", o)
	}
	if len(o.Images) != 3 || len(o.Amenities) != 2 || o.Bedrooms != 3 || o.MaxAdults != 6 || o.Price != 1200 {
		t.Errorf("offer = %+v", o)
	}
	if o.Coordinates == nil || o.Coordinates.Latitude != 52.370216 || o.Coordinates.Longitude != 4.895168 {
		t.Errorf("coordinates = %+v", o.Coordinates)
	}
}

func TestParseRowErrors(t *testing.T) {
	fields := strings.Split(validRow, "\t")
	with := func(col, value string) string {
		out := append([]string(nil), fields...)
		for i, c := range tsvColumns {
			if c == col {
				out[i] = value
			}
		}
		return row(out...)
	}

	cases := map[string]string{
		"columns":     row(fields[:10]...),
		"date":        with("publishDate", "01.05.2024"),
		"rooms":       with("rooms", "three"),
		"price":       with("price", "1.5k"),
		"coordinates": with("coordinates", "52.37"),
		"city":        with("city", "Berlin"),
		"amenity":     with("amenities", "Breakfast;Sauna"),
	}
	for name, line := range cases {
		if _, _, _, err := parseRow(line); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestParseHelpers(t *testing.T) {
	if !parseBool("Да") || !parseBool(" TRUE ") || parseBool("Нет") || parseBool("") {
		t.Error("parseBool")
	}
	if got := splitList(" a ; ;b;"); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("splitList = %q", got)
	}
	if _, err := parseCoordinates("x,1"); err == nil {
		t.Error("bad latitude accepted")
	}
}

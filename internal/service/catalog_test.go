package service

import (
	"context"
	"testing"

	"github.com/iliyamo/venue-reservation/internal/apperr"
)

func TestTimeSlotHours(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	ts, err := f.slots.Create(ctx, TimeSlotInput{Order: 1, Start: "9:30", End: "12:00:00"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ts.Start != "09:30:00" || ts.End != "12:00:00" {
		t.Fatalf("times not normalized: %s-%s", ts.Start, ts.End)
	}

	cases := []TimeSlotInput{
		{Order: 1, Start: "18:00", End: "14:00"},
		{Order: 1, Start: "14:00", End: "14:00"},
		{Order: 1, Start: "25:00", End: "26:00"},
		{Order: 0, Start: "10:00", End: "11:00"},
	}
	for _, in := range cases {
		_, err := f.slots.Create(ctx, in)
		wantKind(t, err, apperr.KindValidation)
	}

	// Orders may repeat.
	if _, err := f.slots.Create(ctx, TimeSlotInput{Order: 1, Start: "13:00", End: "14:00"}); err != nil {
		t.Fatalf("duplicate order: %v", err)
	}
}

func TestVenueCRUD(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.venues.Create(ctx, VenueInput{Title: "  ", Address: "x", Capacity: 0, Price: -1})
	wantKind(t, err, apperr.KindValidation)
	if n := len(apperr.From(err).Details); n != 3 {
		t.Fatalf("expected three details, got %v", apperr.From(err).Details)
	}

	v, err := f.venues.Create(ctx, VenueInput{Title: "Salón Azul", Address: "Calle 1", Capacity: 50, Price: 1000})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	v, err = f.venues.Update(ctx, v.ID, VenueInput{Title: "Salón Rojo", Address: "Calle 2", Capacity: 80, Price: 1500})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if v.Title != "Salón Rojo" || v.Price != 1500 {
		t.Fatalf("not updated: %+v", v)
	}
	if err := f.venues.Delete(ctx, v.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	wantKind(t, f.venues.Delete(ctx, v.ID), apperr.KindNotFound)
	_, err = f.venues.Get(ctx, v.ID, false)
	wantKind(t, err, apperr.KindNotFound)
	if _, err := f.venues.Get(ctx, v.ID, true); err != nil {
		t.Fatalf("inactive venue should be readable with includeInactive: %v", err)
	}

	active, _ := f.venues.List(ctx, false)
	all, _ := f.venues.List(ctx, true)
	if len(active) != 0 || len(all) != 1 {
		t.Fatalf("expected 0 active and 1 total, got %d and %d", len(active), len(all))
	}
}

func TestAvailabilityValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.venues.Availability(ctx, "2030-13-01", nil)
	wantKind(t, err, apperr.KindValidation)

	missing := uint64(42)
	_, err = f.venues.Availability(ctx, "2030-02-01", &missing)
	wantKind(t, err, apperr.KindNotFound)
}

func TestAddOnCRUD(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a, err := f.addOns.Create(ctx, AddOnInput{Description: " Animación ", Price: 0})
	if err != nil {
		t.Fatalf("free add-ons are allowed: %v", err)
	}
	if a.Description != "Animación" {
		t.Fatalf("description not trimmed: %q", a.Description)
	}
	_, err = f.addOns.Update(ctx, a.ID, AddOnInput{Description: "Animación", Price: -5})
	wantKind(t, err, apperr.KindValidation)
	if err := f.addOns.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, err = f.addOns.Update(ctx, a.ID, AddOnInput{Description: "Animación", Price: 5})
	wantKind(t, err, apperr.KindNotFound)
}

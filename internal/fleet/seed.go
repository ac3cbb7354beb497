package fleet

import (
	"context"
	"time"

	"github.com/moviops/movi/pkg/domain"
)

func parseSQLiteTime(s string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Seed populates an empty database with a small demo fleet: two paths, four
// routes, today's trips at mixed booking levels, and a pool of vehicles and
// drivers with one deployment in place. Already-seeded databases are left
// untouched.
func (s *Store) Seed(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM stops`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	stops := []*domain.Stop{
		{Name: "Majestic Terminal", Latitude: 12.9767, Longitude: 77.5713},
		{Name: "Indiranagar", Latitude: 12.9719, Longitude: 77.6412},
		{Name: "Marathahalli Bridge", Latitude: 12.9569, Longitude: 77.7011},
		{Name: "Whitefield Tech Park", Latitude: 12.9698, Longitude: 77.7500},
		{Name: "Silk Board", Latitude: 12.9177, Longitude: 77.6233},
		{Name: "Electronic City Gate", Latitude: 12.8452, Longitude: 77.6602},
	}
	for _, st := range stops {
		if err := s.CreateStop(ctx, st); err != nil {
			return err
		}
	}

	east := &domain.Path{Name: "Whitefield Express", StopIDs: []int64{stops[0].ID, stops[1].ID, stops[2].ID, stops[3].ID}}
	south := &domain.Path{Name: "E-City Direct", StopIDs: []int64{stops[0].ID, stops[4].ID, stops[5].ID}}
	for _, p := range []*domain.Path{east, south} {
		if err := s.CreatePath(ctx, p); err != nil {
			return err
		}
	}

	routes := []*domain.Route{
		{PathID: east.ID, ShiftTime: "08:00", Direction: "UP", Active: true},
		{PathID: east.ID, ShiftTime: "18:30", Direction: "DOWN", Active: true},
		{PathID: south.ID, ShiftTime: "09:00", Direction: "UP", Active: true},
		{PathID: south.ID, ShiftTime: "19:00", Direction: "DOWN", Active: true},
	}
	for _, r := range routes {
		if err := s.CreateRoute(ctx, r); err != nil {
			return err
		}
	}

	today := time.Now().Format("2006-01-02")
	trips := []*domain.Trip{
		{RouteID: routes[0].ID, DisplayName: "Whitefield Express 08:00 UP", BookingPercentage: 25, LiveStatus: "scheduled", TripDate: today},
		{RouteID: routes[1].ID, DisplayName: "Whitefield Express 18:30 DOWN", BookingPercentage: 80, LiveStatus: "scheduled", TripDate: today},
		{RouteID: routes[2].ID, DisplayName: "E-City Direct 09:00 UP", BookingPercentage: 0, LiveStatus: "scheduled", TripDate: today},
		{RouteID: routes[3].ID, DisplayName: "E-City Direct 19:00 DOWN", BookingPercentage: 55, LiveStatus: "scheduled", TripDate: today},
	}
	for _, t := range trips {
		if err := s.CreateTrip(ctx, t); err != nil {
			return err
		}
	}

	vehicles := []*domain.Vehicle{
		{LicensePlate: "KA-01-AB-1234", Type: "bus", Capacity: 40},
		{LicensePlate: "KA-01-CD-5678", Type: "bus", Capacity: 40},
		{LicensePlate: "KA-02-EF-9012", Type: "cab", Capacity: 6},
		{LicensePlate: "KA-02-GH-3456", Type: "cab", Capacity: 6},
	}
	for _, v := range vehicles {
		if err := s.CreateVehicle(ctx, v); err != nil {
			return err
		}
	}

	drivers := []*domain.Driver{
		{Name: "Asha Rao", LicenseNumber: "DL-KA-100001", Phone: "+91-9800000001"},
		{Name: "Mohan Iyer", LicenseNumber: "DL-KA-100002", Phone: "+91-9800000002"},
		{Name: "Priya Nair", LicenseNumber: "DL-KA-100003"},
	}
	for _, d := range drivers {
		if err := s.CreateDriver(ctx, d); err != nil {
			return err
		}
	}

	// One trip starts out deployed so consequence checks have something
	// to find on day one.
	return s.CreateDeployment(ctx, &domain.Deployment{
		TripID:    trips[0].ID,
		VehicleID: vehicles[0].ID,
		DriverID:  drivers[0].ID,
	})
}

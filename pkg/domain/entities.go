package domain

import "time"

// Fleet entities. The pipeline never touches these tables directly; every
// read or mutation goes through a named operation in the registry.

// Stop is a geographic boarding point.
type Stop struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Path is an ordered sequence of stops.
type Path struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	StopIDs []int64 `json:"stop_ids,omitempty"`
}

// Route is a scheduled direction over a path.
type Route struct {
	ID        int64  `json:"id"`
	PathID    int64  `json:"path_id"`
	Name      string `json:"name"`
	ShiftTime string `json:"shift_time"` // HH:MM
	Direction string `json:"direction"`  // UP or DOWN
	Active    bool   `json:"active"`
}

// Vehicle is a bus or cab with a fixed seat capacity.
type Vehicle struct {
	ID           int64  `json:"id"`
	LicensePlate string `json:"license_plate"`
	Type         string `json:"type"`
	Capacity     int    `json:"capacity"`
}

// Driver operates vehicles.
type Driver struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	LicenseNumber string `json:"license_number"`
	Phone         string `json:"phone,omitempty"`
}

// Trip is a scheduled daily instance of a route. BookingPercentage is the
// share of the deployed vehicle's capacity already booked by employees.
type Trip struct {
	ID                int64  `json:"id"`
	RouteID           int64  `json:"route_id"`
	DisplayName       string `json:"display_name"`
	BookingPercentage int    `json:"booking_percentage"`
	LiveStatus        string `json:"live_status,omitempty"`
	TripDate          string `json:"trip_date,omitempty"`
}

// Deployment assigns a vehicle and driver to a trip.
type Deployment struct {
	ID         int64     `json:"id"`
	TripID     int64     `json:"trip_id"`
	VehicleID  int64     `json:"vehicle_id"`
	DriverID   int64     `json:"driver_id"`
	DeployedAt time.Time `json:"deployed_at"`
}

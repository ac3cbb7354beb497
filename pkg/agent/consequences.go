package agent

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/moviops/movi/pkg/domain"
)

// evaluate computes the operational impact of an operation flagged for a
// consequence check. Risk is high when the trip has bookings and a
// deployment, low for a deployment without bookings, none without a
// deployment. Lookup failures fail open (no confirmation required) with
// the error surfaced on the consequence record; the evaluator must never
// hang or kill the turn.
func (p *Pipeline) evaluate(ctx context.Context, st *domain.TurnState) {
	defer p.observeStage(domain.StageEvaluate, time.Now())

	cons := &domain.Consequence{Risk: domain.RiskNone}
	st.Consequence = cons

	tripID, ok := numericParam(st.Params, "trip_id")
	if !ok {
		cons.EvalError = "consequence check skipped: no trip reference"
		st.SetRisk(domain.RiskNone)
		return
	}

	trip, err := p.fleet.TripByID(ctx, tripID)
	if err != nil {
		p.failOpen(st, cons, fmt.Errorf("trip lookup: %w", err))
		return
	}
	cons.TripName = trip.DisplayName
	cons.BookingPercentage = trip.BookingPercentage

	dep, err := p.fleet.DeploymentForTrip(ctx, tripID)
	if errors.Is(err, domain.ErrNotFound) {
		cons.HasDeployment = false
		cons.Explanation = fmt.Sprintf("Trip %q has no vehicle assigned; nothing is affected.", trip.DisplayName)
		st.SetRisk(domain.RiskNone)
		return
	}
	if err != nil {
		p.failOpen(st, cons, fmt.Errorf("deployment lookup: %w", err))
		return
	}
	cons.HasDeployment = true

	vehicle, err := p.fleet.VehicleByID(ctx, dep.VehicleID)
	if err != nil {
		p.failOpen(st, cons, fmt.Errorf("vehicle lookup: %w", err))
		return
	}

	affected := int(math.Round(float64(vehicle.Capacity) * float64(trip.BookingPercentage) / 100))
	cons.AffectedCount = affected

	if trip.BookingPercentage > 0 {
		cons.Explanation = fmt.Sprintf(
			"Trip %q is %d%% booked on a %d-seat vehicle. This affects about %d passengers.",
			trip.DisplayName, trip.BookingPercentage, vehicle.Capacity, affected)
		cons.Details = []string{
			fmt.Sprintf("Approximately %d passengers hold bookings on this trip", affected),
			fmt.Sprintf("Vehicle %s (capacity %d) is currently deployed", vehicle.LicensePlate, vehicle.Capacity),
			"Passengers will not be picked up unless another vehicle is assigned",
		}
		st.SetRisk(domain.RiskHigh)
		return
	}

	cons.Explanation = fmt.Sprintf(
		"Trip %q has a vehicle deployed but no bookings yet; no passengers are affected.",
		trip.DisplayName)
	cons.Details = []string{
		fmt.Sprintf("Vehicle %s is deployed with zero bookings", vehicle.LicensePlate),
	}
	st.SetRisk(domain.RiskLow)
}

// failOpen records the lookup failure and clears the confirmation
// requirement so the turn can proceed.
func (p *Pipeline) failOpen(st *domain.TurnState, cons *domain.Consequence, err error) {
	p.logger.Warn("consequence evaluation failed open",
		"session_id", st.SessionID, "operation", st.Operation, "err", err)
	cons.EvalError = err.Error()
	cons.Explanation = "Impact could not be evaluated; proceeding without a confirmation requirement."
	st.SetRisk(domain.RiskNone)
}

// numericParam reads an int64 out of a loosely typed parameter map.
func numericParam(params map[string]any, key string) (int64, bool) {
	switch v := params[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		if v == float64(int64(v)) {
			return int64(v), true
		}
	}
	return 0, false
}

package entity

import "errors"

var ErrPlanNotFound = errors.New("plan not found")

type Plan struct {
	ID       string
	Name     string
	Amount   int
	Currency string
}

// Fixed price table. Client-supplied amounts are never trusted; the plan
// decides the price.
var plans = map[string]Plan{
	"starter":      {ID: "starter", Name: "Starter", Amount: 2999, Currency: "EGP"},
	"professional": {ID: "professional", Name: "Professional", Amount: 7999, Currency: "EGP"},
	"enterprise":   {ID: "enterprise", Name: "Enterprise", Amount: 19999, Currency: "EGP"},
}

func PlanByID(id string) (*Plan, error) {
	plan, ok := plans[id]
	if !ok {
		return nil, ErrPlanNotFound
	}
	return &plan, nil
}

package domain

import (
	"fmt"
	"strings"
)

type SeatClass string

const (
	SeatClassEconomy  SeatClass = "ECONOMY"
	SeatClassBusiness SeatClass = "BUSINESS"
	SeatClassFirst    SeatClass = "FIRST"
)

// SeatClasses lists every bookable class in display order.
var SeatClasses = []SeatClass{SeatClassEconomy, SeatClassBusiness, SeatClassFirst}

func (c SeatClass) Valid() bool {
	for _, known := range SeatClasses {
		if c == known {
			return true
		}
	}
	return false
}

func ParseSeatClass(s string) (SeatClass, error) {
	c := SeatClass(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: unknown seat class %q", ErrValidation, s)
	}
	return c, nil
}

type FoodOption string

const (
	FoodNoMeal     FoodOption = "NO_MEAL"
	FoodVegetarian FoodOption = "VEGETARIAN"
	FoodChicken    FoodOption = "CHICKEN"
	FoodBeef       FoodOption = "BEEF"
)

var FoodOptions = []FoodOption{FoodNoMeal, FoodVegetarian, FoodChicken, FoodBeef}

func (f FoodOption) Valid() bool {
	for _, known := range FoodOptions {
		if f == known {
			return true
		}
	}
	return false
}

func ParseFoodOption(s string) (FoodOption, error) {
	f := FoodOption(strings.ToUpper(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("%w: unknown food option %q", ErrValidation, s)
	}
	return f, nil
}

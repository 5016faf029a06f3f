package domain

import (
	"math"
	"strconv"
	"strings"
)

const (
	// bmiImperialFactor converts lb/in² into kg/m².
	bmiImperialFactor = 703

	waterTargetCups = 8
	sleepMinHours   = 7
	sleepMaxHours   = 9
)

const (
	MsgBMINotPositive = "please enter numbers greater than zero."

	MsgWaterNegative = "water amount cannot be negative."
	MsgWaterBelow    = "you drank less than 8 cups. try to drink more."
	MsgWaterMet      = "nice! you hit your 8 cups or more for today."

	MsgSleepNegative = "sleep time cannot be negative."
	MsgSleepTooLess  = "you slept less than 7 hours. try to rest more."
	MsgSleepHealthy  = "nice, you are in the 7-9 hours range."
	MsgSleepTooMuch  = "you slept more than 9 hours. listen to your body but watch oversleeping."

	MsgCaloriesNegative = "calories cannot be negative."
	MsgCaloriesExact    = "you hit your target exactly. nice!"

	MsgInvalidNumbers  = "please enter valid numbers."
	MsgInvalidNumber   = "please enter a number."
	MsgInvalidCalories = "please enter numbers."
)

// InvalidNumberMessage is the prompt shown when a metric form does not parse.
func InvalidNumberMessage(m Metric) string {
	switch m {
	case MetricWater, MetricSleep:
		return MsgInvalidNumber
	case MetricCalories:
		return MsgInvalidCalories
	default:
		return MsgInvalidNumbers
	}
}

type BMIResult struct {
	BMI      float64     `json:"bmi"`
	Category BMICategory `json:"category"`
}

type WaterResult struct {
	Cups     float64 `json:"cups"`
	Feedback string  `json:"feedback"`
}

type SleepResult struct {
	Hours    float64 `json:"hours"`
	Feedback string  `json:"feedback"`
}

type CaloriesResult struct {
	Target     float64 `json:"target"`
	Actual     float64 `json:"actual"`
	Difference float64 `json:"difference"`
	Feedback   string  `json:"feedback"`
}

// ParseReading converts one raw form value into a real number. Surrounding
// whitespace is ignored; anything else that does not parse is ErrInvalidNumber.
func ParseReading(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, ErrInvalidNumber
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidNumber
	}
	return v, nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// roundTo rounds the exact binary value of v to the given number of decimals.
func roundTo(v float64, decimals int) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', decimals, 64), 64)
	return r
}

// EvaluateBMI computes BMI from pounds and inches, rounded to one decimal.
func EvaluateBMI(weight, height float64) (BMIResult, error) {
	if !finite(weight, height) {
		return BMIResult{}, ErrInvalidNumber
	}
	if weight <= 0 || height <= 0 {
		return BMIResult{}, &RangeError{Metric: MetricBMI, Message: MsgBMINotPositive}
	}

	raw := weight / (height * height) * bmiImperialFactor
	if !finite(raw) {
		return BMIResult{}, ErrInvalidNumber
	}
	bmi := roundTo(raw, 1)

	return BMIResult{BMI: bmi, Category: ClassifyBMI(bmi)}, nil
}

// ClassifyBMI maps a rounded BMI onto half-open bands with inclusive lower bounds.
func ClassifyBMI(bmi float64) BMICategory {
	switch {
	case bmi < 18.5:
		return CategoryUnderweight
	case bmi < 25:
		return CategoryNormal
	case bmi < 30:
		return CategoryOverweight
	default:
		return CategoryObese
	}
}

func EvaluateWater(cups float64) (WaterResult, error) {
	if !finite(cups) {
		return WaterResult{}, ErrInvalidNumber
	}
	if cups < 0 {
		return WaterResult{}, &RangeError{Metric: MetricWater, Message: MsgWaterNegative}
	}

	feedback := MsgWaterMet
	if cups < waterTargetCups {
		feedback = MsgWaterBelow
	}
	return WaterResult{Cups: cups, Feedback: feedback}, nil
}

func EvaluateSleep(hours float64) (SleepResult, error) {
	if !finite(hours) {
		return SleepResult{}, ErrInvalidNumber
	}
	if hours < 0 {
		return SleepResult{}, &RangeError{Metric: MetricSleep, Message: MsgSleepNegative}
	}

	var feedback string
	switch {
	case hours < sleepMinHours:
		feedback = MsgSleepTooLess
	case hours <= sleepMaxHours:
		feedback = MsgSleepHealthy
	default:
		feedback = MsgSleepTooMuch
	}
	return SleepResult{Hours: hours, Feedback: feedback}, nil
}

func EvaluateCalories(target, actual float64) (CaloriesResult, error) {
	if !finite(target, actual) {
		return CaloriesResult{}, ErrInvalidNumber
	}
	if target < 0 || actual < 0 {
		return CaloriesResult{}, &RangeError{Metric: MetricCalories, Message: MsgCaloriesNegative}
	}

	diff := actual - target
	var feedback string
	switch {
	case diff > 0:
		feedback = "you ate about " + strconv.FormatFloat(diff, 'f', 0, 64) + " calories over your target."
	case diff < 0:
		feedback = "you are about " + strconv.FormatFloat(-diff, 'f', 0, 64) + " calories under your target."
	default:
		feedback = MsgCaloriesExact
	}

	return CaloriesResult{Target: target, Actual: actual, Difference: diff, Feedback: feedback}, nil
}

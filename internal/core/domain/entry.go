package domain

import "time"

// HistoryLimit is the number of most recent entries shown per metric.
const HistoryLimit = 20

// Metric identifies one of the tracked measurement kinds.
type Metric string

const (
	MetricBMI      Metric = "bmi"
	MetricWater    Metric = "water"
	MetricSleep    Metric = "sleep"
	MetricCalories Metric = "calories"
)

// AllMetrics lists every tracked metric in display order.
var AllMetrics = []Metric{MetricBMI, MetricWater, MetricSleep, MetricCalories}

// ParseMetric converts a path segment or identifier into a Metric.
func ParseMetric(s string) (Metric, error) {
	for _, m := range AllMetrics {
		if string(m) == s {
			return m, nil
		}
	}
	return "", ErrUnknownMetric
}

// BMICategory is the ordinal classification of a rounded BMI value.
type BMICategory string

const (
	CategoryUnderweight BMICategory = "underweight"
	CategoryNormal      BMICategory = "normal"
	CategoryOverweight  BMICategory = "overweight"
	CategoryObese       BMICategory = "obese"
)

// EntryMeta holds the fields every logged entry shares. ID and CreatedAt are
// assigned by the store on append.
type EntryMeta struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Meta gives repositories uniform access to the shared fields.
func (m *EntryMeta) Meta() *EntryMeta { return m }

// Entry is one immutable logged measurement owned by one user.
type Entry interface {
	Metric() Metric
	Meta() *EntryMeta
}

type BMIEntry struct {
	EntryMeta
	Weight   float64     `json:"weight"`
	Height   float64     `json:"height"`
	BMI      float64     `json:"bmi"`
	Category BMICategory `json:"category"`
}

func (*BMIEntry) Metric() Metric { return MetricBMI }

type WaterEntry struct {
	EntryMeta
	Cups float64 `json:"cups"`
}

func (*WaterEntry) Metric() Metric { return MetricWater }

type SleepEntry struct {
	EntryMeta
	Hours float64 `json:"hours"`
}

func (*SleepEntry) Metric() Metric { return MetricSleep }

type CaloriesEntry struct {
	EntryMeta
	Target     float64 `json:"target"`
	Actual     float64 `json:"actual"`
	Difference float64 `json:"difference"`
}

func (*CaloriesEntry) Metric() Metric { return MetricCalories }

// NewBMIEntry builds an entry whose BMI and category come from EvaluateBMI.
func NewBMIEntry(userID int64, weight, height float64) (*BMIEntry, BMIResult, error) {
	res, err := EvaluateBMI(weight, height)
	if err != nil {
		return nil, BMIResult{}, err
	}
	return &BMIEntry{
		EntryMeta: EntryMeta{UserID: userID},
		Weight:    weight,
		Height:    height,
		BMI:       res.BMI,
		Category:  res.Category,
	}, res, nil
}

func NewWaterEntry(userID int64, cups float64) (*WaterEntry, WaterResult, error) {
	res, err := EvaluateWater(cups)
	if err != nil {
		return nil, WaterResult{}, err
	}
	return &WaterEntry{EntryMeta: EntryMeta{UserID: userID}, Cups: cups}, res, nil
}

func NewSleepEntry(userID int64, hours float64) (*SleepEntry, SleepResult, error) {
	res, err := EvaluateSleep(hours)
	if err != nil {
		return nil, SleepResult{}, err
	}
	return &SleepEntry{EntryMeta: EntryMeta{UserID: userID}, Hours: hours}, res, nil
}

// NewCaloriesEntry builds an entry whose difference comes from EvaluateCalories.
func NewCaloriesEntry(userID int64, target, actual float64) (*CaloriesEntry, CaloriesResult, error) {
	res, err := EvaluateCalories(target, actual)
	if err != nil {
		return nil, CaloriesResult{}, err
	}
	return &CaloriesEntry{
		EntryMeta:  EntryMeta{UserID: userID},
		Target:     target,
		Actual:     actual,
		Difference: res.Difference,
	}, res, nil
}

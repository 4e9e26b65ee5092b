package domain

const (
	TrafficSourceAPI      = "api"
	TrafficSourceFallback = "fallback"
)

// TrafficData is the normalized traffic profile of a single domain
type TrafficData struct {
	Domain        string
	MonthlyVisits string
	BounceRate    string
	AvgDuration   string
	DeviceSplit   string
	Source        string
	RawData       map[string]any
}

func (t TrafficData) Metrics() TrafficMetrics {
	return TrafficMetrics{
		MonthlyVisits: t.MonthlyVisits,
		BounceRate:    t.BounceRate,
		AvgDuration:   t.AvgDuration,
		DeviceSplit:   t.DeviceSplit,
	}
}

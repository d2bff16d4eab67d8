package trend

// Sign is the sign of a percent change.
type Sign int8

// Signs.
const (
	SignNegative Sign = -1
	SignZero     Sign = 0
	SignPositive Sign = 1
)

// RemarkKey selects a metric-specific remark.
type RemarkKey struct {
	MetricID string
	Sign     Sign
	Bucket   Bucket
}

// RemarkTable maps a key to a remark template. Templates may reference
// {metric} (display name) and {change} (absolute percent change).
type RemarkTable map[RemarkKey]string

type outcomeKey struct {
	outcome Outcome
	bucket  Bucket
}

// DefaultRemarks returns a fresh copy of the built-in fleet remarks.
func DefaultRemarks() RemarkTable {
	out := make(RemarkTable, len(defaultRemarks))

	for k, v := range defaultRemarks {
		out[k] = v
	}

	return out
}

var defaultRemarks = RemarkTable{
	{"fuel_consumption", SignPositive, BucketNotable}: "Fuel use is creeping up by {change}; review idling habits and tyre pressure.",
	{"fuel_consumption", SignPositive, BucketDramatic}: "Fuel use jumped {change}; inspect the affected vehicles for mechanical faults.",
	{"fuel_consumption", SignNegative, BucketNotable}: "Fuel efficiency improved {change}; eco-driving measures are paying off.",
	{"fuel_consumption", SignNegative, BucketDramatic}: "Fuel consumption fell {change}; confirm the readings before reporting the savings.",

	{"safety_score", SignPositive, BucketNotable}:  "Driver safety is trending up; keep reinforcing the current coaching program.",
	{"safety_score", SignPositive, BucketDramatic}: "Safety scores rose {change}; recognise the drivers behind the improvement.",
	{"safety_score", SignNegative, BucketNotable}:  "Safety scores are slipping; schedule refresher training for low scorers.",
	{"safety_score", SignNegative, BucketDramatic}: "Safety scores dropped {change}; review recent incidents and harsh-driving events now.",

	{"on_time_delivery", SignPositive, BucketNotable}:  "Delivery punctuality is improving across routes.",
	{"on_time_delivery", SignPositive, BucketDramatic}: "On-time delivery rose {change}; route planning changes are working.",
	{"on_time_delivery", SignNegative, BucketNotable}:  "More deliveries are running late; check congested routes and dispatch times.",
	{"on_time_delivery", SignNegative, BucketDramatic}: "On-time delivery fell {change}; customer commitments are at risk.",

	{"maintenance_cost", SignPositive, BucketNotable}:  "Maintenance spend is rising; compare it against the service schedule.",
	{"maintenance_cost", SignPositive, BucketDramatic}: "Maintenance cost surged {change}; ageing vehicles may be due for replacement.",
	{"maintenance_cost", SignNegative, BucketNotable}:  "Maintenance spend is easing as preventive servicing takes effect.",
	{"maintenance_cost", SignNegative, BucketDramatic}: "Maintenance cost dropped {change}; make sure scheduled services are not being skipped.",

	{"idle_time", SignPositive, BucketNotable}:  "Idle time is growing; engines are running while vehicles wait.",
	{"idle_time", SignPositive, BucketDramatic}: "Idle time rose {change}; enable automatic engine shut-off where possible.",
	{"idle_time", SignNegative, BucketNotable}:  "Idle time is shrinking, saving fuel and engine hours.",
	{"idle_time", SignNegative, BucketDramatic}: "Idle time fell {change}; anti-idling policies are clearly effective.",
}

var genericRemarks = map[outcomeKey]string{
	{OutcomeSteady, BucketSlight}:        "{metric} is holding steady.",
	{OutcomeImprovement, BucketSlight}:   "{metric} improved slightly, within normal variation.",
	{OutcomeImprovement, BucketNotable}:  "{metric} shows a notable improvement of {change}.",
	{OutcomeImprovement, BucketDramatic}: "{metric} improved dramatically by {change}.",
	{OutcomeDecline, BucketSlight}:       "{metric} declined slightly, within normal variation.",
	{OutcomeDecline, BucketNotable}:      "{metric} shows a notable decline of {change}; keep an eye on it.",
	{OutcomeDecline, BucketDramatic}:     "{metric} declined dramatically by {change} and needs attention.",
}

func signOf(dir Direction) Sign {
	switch dir {
	case DirectionIncrease:
		return SignPositive
	case DirectionDecrease:
		return SignNegative
	default:
		return SignZero
	}
}

// remarkFor resolves the remark template for res: overrides first, then the
// metric-specific defaults, then the generic outcome remarks.
func remarkFor(metricID string, res Result, overrides RemarkTable) (string, bool) {
	key := RemarkKey{MetricID: metricID, Sign: signOf(res.Direction), Bucket: res.Bucket}

	if tmpl, ok := overrides[key]; ok {
		return tmpl, true
	}

	if tmpl, ok := defaultRemarks[key]; ok {
		return tmpl, true
	}

	tmpl, ok := genericRemarks[outcomeKey{outcome: res.Outcome, bucket: res.Bucket}]

	return tmpl, ok
}

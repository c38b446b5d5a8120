package metrics

import "github.com/prometheus/client_golang/prometheus"

func AuthEventsFor(event string) prometheus.Counter { return authEvents.WithLabelValues(event) }

package metrics

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/mylxsw/asteria/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "idcard"

var counterVecs = make(map[string]*prometheus.CounterVec)
var lock sync.Mutex

// BuildCounterVec returns the registered counter for name, creating it on
// first use.
func BuildCounterVec(namespace, name, help string, tags []string) *prometheus.CounterVec {
	lock.Lock()
	defer lock.Unlock()

	cacheKey := fmt.Sprintf("%s:%s:%s", namespace, name, help)
	if sv, ok := counterVecs[cacheKey]; ok {
		return sv
	}

	counterVec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, tags)

	if err := prometheus.Register(counterVec); err != nil {
		log.Errorf("register prometheus metric failed: %v", err)
	}

	counterVecs[cacheKey] = counterVec
	return counterVec
}

// Render counts a finished render of kind (card, sheet, photo) with result
// ok or failed.
func Render(kind string, err error) {
	result := "ok"
	if err != nil {
		result = "failed"
	}
	BuildCounterVec(namespace, "renders_total", "card and sheet renders", []string{"kind", "result"}).
		WithLabelValues(kind, result).Inc()
}

// Fallback counts a degraded-but-continues substitution in component
// (font, photo, background_removal, face, qr, logo, colour).
func Fallback(component string) {
	BuildCounterVec(namespace, "fallbacks_total", "degraded render substitutions", []string{"component"}).
		WithLabelValues(component).Inc()
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

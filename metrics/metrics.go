package metrics

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/xicodomingues/francinette/types"
)

const (
	MetricsNamespace = "francinette"
)

var (
	Debug                bool = true
	validResults              = []types.TestStatus{types.TestStatusPass, types.TestStatusFail, types.TestStatusNoTest, types.TestStatusTimeout}
	nonAlphanumericRegex      = regexp.MustCompile(`[^a-zA-Z ]+`)

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	outcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "outcomes_total",
		Help:      "Count of classified test binary runs",
	}, []string{
		"suite",
		"function",
		"status",
	})

	suiteErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "suite_errors_total",
		Help:      "Count of suites that could not report per-function results",
	}, []string{
		"suite",
	})

	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "runs_total",
		Help:      "Count of completed runs by verdict",
	}, []string{
		"verdict",
	})

	runDuration = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of the last completed run",
	})
)

// errToLabel tries to make the error string a more valid Prometheus label
func errToLabel(err error) string {
	if err == nil {
		return "nil"
	}
	errClean := nonAlphanumericRegex.ReplaceAllString(err.Error(), "")
	errClean = strings.ReplaceAll(errClean, " ", "_")
	errClean = strings.ReplaceAll(errClean, "__", "_")
	return errClean
}

func RecordError(error string) {
	if Debug {
		log.Debug("metric inc",
			"m", "errors_total",
			"error", error,
		)
	}
	errorsTotal.WithLabelValues(error).Inc()
}

// RecordErrorDetails concats the error message to the label
// and also tries to clean the label to be a valid Prometheus label
func RecordErrorDetails(label string, err error) {
	if err == nil {
		return
	}
	label = fmt.Sprintf("%s.%s", label, errToLabel(err))
	RecordError(label)
}

func RecordOutcome(suite string, function string, status types.TestStatus) {
	if !isValidResult(status) {
		log.Error("RecordOutcome - invalid status", "status", status)
		return
	}
	if Debug {
		log.Debug("metric inc",
			"m", "outcomes_total",
			"suite", suite,
			"function", function,
			"status", status)
	}
	outcomesTotal.WithLabelValues(suite, function, string(status)).Inc()
}

func RecordSuiteError(suite string) {
	suiteErrorsTotal.WithLabelValues(suite).Inc()
}

// RecordRun records the verdict of a finished run
func RecordRun(ok bool, duration time.Duration) {
	verdict := "fail"
	if ok {
		verdict = "pass"
	}
	runsTotal.WithLabelValues(verdict).Inc()
	runDuration.Set(duration.Seconds())
}

func isValidResult(result types.TestStatus) bool {
	return slices.Contains(validResults, result)
}

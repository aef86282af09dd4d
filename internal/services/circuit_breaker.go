package services

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// CircuitBreakerService holds one breaker per upstream provider so a failing
// provider cannot poison calls to the others.
type CircuitBreakerService struct {
	breakers map[string]*gobreaker.CircuitBreaker
	logger   *logrus.Logger
}

// Provider breaker names.
const (
	BreakerMLB          = "mlb-statsapi"
	BreakerFootballData = "football-data"
	BreakerSoccerData   = "soccerdata"
	BreakerOddsAPI      = "odds-api"
	BreakerLLM          = "llm"
)

func NewCircuitBreakerService(timeout time.Duration, logger *logrus.Logger) *CircuitBreakerService {
	breakers := make(map[string]*gobreaker.CircuitBreaker)
	for _, name := range []string{BreakerMLB, BreakerFootballData, BreakerSoccerData, BreakerOddsAPI, BreakerLLM} {
		name := name
		breakers[name] = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 3,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 5 && failureRatio >= 0.6
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.WithFields(logrus.Fields{
					"component": "circuit_breaker",
					"provider":  name,
					"from":      from.String(),
					"to":        to.String(),
				}).Info("Circuit breaker state changed")
			},
		})
	}

	return &CircuitBreakerService{breakers: breakers, logger: logger}
}

// Breaker returns the breaker for a provider, nil when none is registered.
func (cb *CircuitBreakerService) Breaker(provider string) *gobreaker.CircuitBreaker {
	return cb.breakers[provider]
}

// GetState returns the current state of a provider's breaker.
func (cb *CircuitBreakerService) GetState(provider string) gobreaker.State {
	if breaker, exists := cb.breakers[provider]; exists {
		return breaker.State()
	}
	return gobreaker.StateClosed
}

// GetCounts returns the current counts of a provider's breaker.
func (cb *CircuitBreakerService) GetCounts(provider string) gobreaker.Counts {
	if breaker, exists := cb.breakers[provider]; exists {
		return breaker.Counts()
	}
	return gobreaker.Counts{}
}

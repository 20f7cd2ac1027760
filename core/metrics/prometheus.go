// Copyright (C) 2023 SuperChief Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package metrics

import (
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	settlementCounter *prometheus.CounterVec
	rejectionCounter  *prometheus.CounterVec
	auctionBidCounter prometheus.Counter
	nonceCounter      prometheus.Counter

	setupOnce sync.Once
)

// Config for the metrics endpoint.
type Config struct {
	Enabled bool   `long:"enabled"`
	Path    string `long:"path"`
	Port    int    `long:"port"`
}

func NewDefaultConfig() Config {
	return Config{
		Enabled: false,
		Path:    "/metrics",
		Port:    2112,
	}
}

// Start enables metrics given config, setting up the instruments and the
// scrape endpoint. Instruments stay nil (and the helpers no-ops) when
// metrics are disabled.
func Start(conf Config) {
	if !conf.Enabled {
		return
	}
	setupOnce.Do(setupMetrics)
	http.Handle(conf.Path, promhttp.Handler())
	go func() {
		log.Fatal(http.ListenAndServe(fmt.Sprintf(":%d", conf.Port), nil))
	}()
}

func setupMetrics() {
	settlementCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "superchief",
		Name:      "settlements_total",
		Help:      "Number of settled order pairs per payment token",
	}, []string{"token"})
	rejectionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "superchief",
		Name:      "rejections_total",
		Help:      "Number of rejected calls per failure class",
	}, []string{"engine", "reason"})
	auctionBidCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "superchief",
		Name:      "auction_bids_total",
		Help:      "Number of accepted auction bids",
	})
	nonceCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "superchief",
		Name:      "nonce_increments_total",
		Help:      "Number of mass cancellations via nonce increment",
	})
	prometheus.MustRegister(settlementCounter, rejectionCounter, auctionBidCounter, nonceCounter)
}

// SettlementCounterInc increments the settlement counter.
func SettlementCounterInc(token string) {
	if settlementCounter == nil {
		return
	}
	settlementCounter.WithLabelValues(token).Inc()
}

// RejectionCounterInc increments the rejection counter for an engine and
// failure class.
func RejectionCounterInc(engine, reason string) {
	if rejectionCounter == nil {
		return
	}
	rejectionCounter.WithLabelValues(engine, reason).Inc()
}

// AuctionBidCounterInc increments the accepted bid counter.
func AuctionBidCounterInc() {
	if auctionBidCounter == nil {
		return
	}
	auctionBidCounter.Inc()
}

// NonceCounterInc increments the nonce increment counter.
func NonceCounterInc() {
	if nonceCounter == nil {
		return
	}
	nonceCounter.Inc()
}

// SPDX-License-Identifier: MIT

// Package metrics exposes business-level Prometheus counters for contactd.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ContactsCreated counts successful contact creations.
	ContactsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "contactd",
		Name:      "contacts_created_total",
		Help:      "Total contacts created",
	})

	// ContactsDeleted counts successful contact deletions.
	ContactsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "contactd",
		Name:      "contacts_deleted_total",
		Help:      "Total contacts deleted",
	})

	// Logins counts login attempts by result ("success" or "failure").
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contactd",
		Name:      "logins_total",
		Help:      "Total login attempts by result",
	}, []string{"result"})

	// VerificationMails counts verification mail dispatches by result.
	VerificationMails = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contactd",
		Name:      "verification_mails_total",
		Help:      "Total verification mail dispatch attempts by result",
	}, []string{"result"})

	// CacheLookups counts contact cache lookups by outcome ("hit" or "miss").
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contactd",
		Name:      "cache_lookups_total",
		Help:      "Contact cache lookups by outcome",
	}, []string{"outcome"})
)

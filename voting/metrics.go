package voting

import (
	"fmt"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

var (
	votesAccepted      = metrics.NewCounter("votes_accepted_total")
	submitVoteDuration = metrics.NewHistogram("submit_vote_duration_seconds")
	saltsIssued        = metrics.NewCounter("salts_issued_total")
)

func votesRejected(kind ErrorKind) *metrics.Counter {
	return metrics.GetOrCreateCounter(fmt.Sprintf(`votes_rejected_total{reason=%q}`, kind))
}

func proofsVerified(valid bool) *metrics.Counter {
	return metrics.GetOrCreateCounter(fmt.Sprintf(`proofs_verified_total{valid="%t"}`, valid))
}

func observeSubmit(start time.Time) {
	submitVoteDuration.UpdateDuration(start)
}

package queries_test

import (
	"testing"

	"cleaning/internal/core/application/usecases/queries"
	"cleaning/internal/core/domain/model/job"
	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewListClientJobsQuery(t *testing.T) {
	scheduled := job.Scheduled
	invalid := job.Status(42)

	tests := []struct {
		name     string
		clientID kernel.UUID
		status   *job.Status
		limit    int
		offset   int
		wantErr  error
	}{
		{name: "defaults", clientID: kernel.NewUUID()},
		{name: "with status", clientID: kernel.NewUUID(), status: &scheduled, limit: 5, offset: 10},
		{name: "missing client", wantErr: errs.ErrValueIsRequired},
		{name: "limit too large", clientID: kernel.NewUUID(), limit: queries.MaxPageSize + 1, wantErr: errs.ErrValueIsOutOfRange},
		{name: "negative limit", clientID: kernel.NewUUID(), limit: -1, wantErr: errs.ErrValueIsOutOfRange},
		{name: "negative offset", clientID: kernel.NewUUID(), offset: -1, wantErr: errs.ErrValueIsInvalid},
		{name: "unknown status", clientID: kernel.NewUUID(), status: &invalid, wantErr: errs.ErrValueIsInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := queries.NewListClientJobsQuery(tt.clientID, tt.status, tt.limit, tt.offset)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, query.Validate())
		})
	}
}

func TestQueries_NotConstructedViaConstructor(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"get job", queries.GetJobQuery{}.Validate(), queries.ErrGetJobQueryIsNotConstructed},
		{"client jobs", queries.ListClientJobsQuery{}.Validate(), queries.ErrListClientJobsQueryIsNotConstructed},
		{"cleaner jobs", queries.ListCleanerJobsQuery{}.Validate(), queries.ErrListCleanerJobsQueryIsNotConstructed},
		{"available jobs", queries.ListAvailableJobsQuery{}.Validate(), queries.ErrListAvailableJobsQueryIsNotConstructed},
		{"get payment", queries.GetPaymentQuery{}.Validate(), queries.ErrGetPaymentQueryIsNotConstructed},
		{"job payments", queries.ListJobPaymentsQuery{}.Validate(), queries.ErrListJobPaymentsQueryIsNotConstructed},
		{"tracking status", queries.GetTrackingStatusQuery{}.Validate(), queries.ErrGetTrackingStatusQueryIsNotConstructed},
		{"matches", queries.FindMatchesForJobQuery{}.Validate(), queries.ErrFindMatchesForJobQueryIsNotConstructed},
		{"suggestions", queries.SuggestJobsForCleanerQuery{}.Validate(), queries.ErrSuggestJobsForCleanerQueryIsNotConstructed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.wantErr)
		})
	}
}

func TestNewGetJobQuery_RequiresIDs(t *testing.T) {
	_, err := queries.NewGetJobQuery(kernel.UUID{}, kernel.NewUUID())
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	_, err = queries.NewGetJobQuery(kernel.NewUUID(), kernel.UUID{})
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestNewFindMatchesForJobQuery_Limit(t *testing.T) {
	_, err := queries.NewFindMatchesForJobQuery(kernel.NewUUID(), kernel.NewUUID(), 0)
	require.NoError(t, err)

	_, err = queries.NewFindMatchesForJobQuery(kernel.NewUUID(), kernel.NewUUID(), 500)
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

	_, err = queries.NewSuggestJobsForCleanerQuery(kernel.NewUUID(), -3)
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
}

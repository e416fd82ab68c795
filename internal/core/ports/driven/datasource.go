package driven

import (
	"context"

	"github.com/custodia-labs/lineage-cli/internal/gedcomx"
)

// DataSource fetches records from the remote tree service. Implementations
// own authentication, retry and backoff; the core never sees transient
// failures. Every method returns (nil, nil) for "no data": a missing or
// partial record is not an error. Ordinances returns domain.ErrRestricted
// when the account is not entitled to temple records.
type DataSource interface {
	// CurrentUser identifies the authenticated user (default start person,
	// submitter name, language).
	CurrentUser(ctx context.Context) (*gedcomx.UserInfo, error)

	// FetchBatch retrieves up to the service's batch limit of persons along
	// with the relationship edges and place sidecar returned with them.
	FetchBatch(ctx context.Context, ids []string) (*gedcomx.PersonBatch, error)

	// PersonSources retrieves the source references and descriptions of one
	// person.
	PersonSources(ctx context.Context, id string) (*gedcomx.SourcesResult, error)

	// PersonNotes retrieves the user notes of one person.
	PersonNotes(ctx context.Context, id string) ([]gedcomx.Note, error)

	// PersonContributors retrieves the distinct contributor names from the
	// person's change log.
	PersonContributors(ctx context.Context, id string) ([]string, error)

	// Memory retrieves the source descriptions of one memory artifact.
	Memory(ctx context.Context, id string) ([]gedcomx.SourceDescription, error)

	// CoupleRelationship retrieves the facts and source references of one
	// couple relationship.
	CoupleRelationship(ctx context.Context, id string) (*gedcomx.Relationship, error)

	// CoupleSources retrieves the source descriptions referenced by a couple
	// relationship.
	CoupleSources(ctx context.Context, id string) ([]gedcomx.SourceDescription, error)

	// CoupleNotes retrieves the user notes of one couple relationship.
	CoupleNotes(ctx context.Context, id string) ([]gedcomx.Note, error)

	// CoupleContributors retrieves the distinct contributor names from the
	// relationship's change log.
	CoupleContributors(ctx context.Context, id string) ([]string, error)

	// Ordinances retrieves the temple-ordinance reservations of one person.
	// Requires elevated access; returns domain.ErrRestricted when denied.
	Ordinances(ctx context.Context, id string) (*gedcomx.OrdinancesResult, error)

	// Requests reports the number of HTTP requests issued so far.
	Requests() int64
}

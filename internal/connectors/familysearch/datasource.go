package familysearch

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"github.com/custodia-labs/lineage-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lineage-cli/internal/gedcomx"
)

// Ensure Connector implements the interface.
var _ driven.DataSource = (*Connector)(nil)

// Connector exposes the FamilySearch tree API as a typed data source.
type Connector struct {
	client *Client
}

// New creates a FamilySearch connector from credentials.
func New(cfg Config) (*Connector, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Connector{client: client}, nil
}

// Requests reports the number of API requests issued so far.
func (c *Connector) Requests() int64 {
	return c.client.Requests()
}

// CurrentUser identifies the authenticated user.
func (c *Connector) CurrentUser(ctx context.Context) (*gedcomx.UserInfo, error) {
	var res struct {
		Users []gedcomx.UserInfo `json:"users"`
	}
	ok, err := c.client.getJSON(ctx, "/platform/users/current", acceptGedcomX, &res)
	if err != nil || !ok || len(res.Users) == 0 {
		return nil, err
	}
	return &res.Users[0], nil
}

// FetchBatch retrieves up to MaxBatch persons with their relationship edges
// and place sidecar.
func (c *Connector) FetchBatch(ctx context.Context, ids []string) (*gedcomx.PersonBatch, error) {
	var batch gedcomx.PersonBatch
	path := "/platform/tree/persons?pids=" + url.QueryEscape(strings.Join(ids, ","))
	ok, err := c.client.getJSON(ctx, path, acceptGedcomX, &batch)
	if err != nil || !ok {
		return nil, err
	}
	return &batch, nil
}

// personsEnvelope is the persons-keyed wrapper of the sources and notes
// endpoints.
type personsEnvelope struct {
	Persons []struct {
		Sources []gedcomx.SourceReference `json:"sources"`
		Notes   []gedcomx.Note            `json:"notes"`
	} `json:"persons"`
	SourceDescriptions []gedcomx.SourceDescription `json:"sourceDescriptions"`
}

// relationshipsEnvelope is the relationships-keyed wrapper of the couple
// endpoints.
type relationshipsEnvelope struct {
	Relationships      []gedcomx.Relationship      `json:"relationships"`
	SourceDescriptions []gedcomx.SourceDescription `json:"sourceDescriptions"`
}

// changesEnvelope is the atom change log.
type changesEnvelope struct {
	Entries []struct {
		Contributors []struct {
			Name string `json:"name"`
		} `json:"contributors"`
	} `json:"entries"`
}

// PersonSources retrieves the source references and descriptions of one
// person.
func (c *Connector) PersonSources(ctx context.Context, id string) (*gedcomx.SourcesResult, error) {
	var env personsEnvelope
	ok, err := c.client.getJSON(ctx, "/platform/tree/persons/"+id+"/sources", acceptGedcomX, &env)
	if err != nil || !ok || len(env.Persons) == 0 {
		return nil, err
	}
	return &gedcomx.SourcesResult{
		References:         env.Persons[0].Sources,
		SourceDescriptions: env.SourceDescriptions,
	}, nil
}

// PersonNotes retrieves the user notes of one person.
func (c *Connector) PersonNotes(ctx context.Context, id string) ([]gedcomx.Note, error) {
	var env personsEnvelope
	ok, err := c.client.getJSON(ctx, "/platform/tree/persons/"+id+"/notes", acceptGedcomX, &env)
	if err != nil || !ok || len(env.Persons) == 0 {
		return nil, err
	}
	return env.Persons[0].Notes, nil
}

// PersonContributors retrieves the distinct contributor names from the
// person's change log, sorted.
func (c *Connector) PersonContributors(ctx context.Context, id string) ([]string, error) {
	return c.contributors(ctx, "/platform/tree/persons/"+id+"/changes")
}

// Memory retrieves the source descriptions of one memory artifact.
func (c *Connector) Memory(ctx context.Context, id string) ([]gedcomx.SourceDescription, error) {
	var env struct {
		SourceDescriptions []gedcomx.SourceDescription `json:"sourceDescriptions"`
	}
	ok, err := c.client.getJSON(ctx, "/platform/memories/memories/"+id, acceptGedcomX, &env)
	if err != nil || !ok {
		return nil, err
	}
	return env.SourceDescriptions, nil
}

// CoupleRelationship retrieves the facts and source references of one couple
// relationship.
func (c *Connector) CoupleRelationship(ctx context.Context, id string) (*gedcomx.Relationship, error) {
	var env relationshipsEnvelope
	ok, err := c.client.getJSON(ctx, "/platform/tree/couple-relationships/"+id, acceptGedcomX, &env)
	if err != nil || !ok || len(env.Relationships) == 0 {
		return nil, err
	}
	return &env.Relationships[0], nil
}

// CoupleSources retrieves the source descriptions referenced by a couple
// relationship.
func (c *Connector) CoupleSources(ctx context.Context, id string) ([]gedcomx.SourceDescription, error) {
	var env relationshipsEnvelope
	ok, err := c.client.getJSON(ctx, "/platform/tree/couple-relationships/"+id+"/sources", acceptGedcomX, &env)
	if err != nil || !ok {
		return nil, err
	}
	return env.SourceDescriptions, nil
}

// CoupleNotes retrieves the user notes of one couple relationship.
func (c *Connector) CoupleNotes(ctx context.Context, id string) ([]gedcomx.Note, error) {
	var env relationshipsEnvelope
	ok, err := c.client.getJSON(ctx, "/platform/tree/couple-relationships/"+id+"/notes", acceptGedcomX, &env)
	if err != nil || !ok || len(env.Relationships) == 0 {
		return nil, err
	}
	return env.Relationships[0].Notes, nil
}

// CoupleContributors retrieves the distinct contributor names from the
// relationship's change log, sorted.
func (c *Connector) CoupleContributors(ctx context.Context, id string) ([]string, error) {
	return c.contributors(ctx, "/platform/tree/couple-relationships/"+id+"/changes")
}

// Ordinances retrieves the temple-ordinance reservations of one person.
func (c *Connector) Ordinances(ctx context.Context, id string) (*gedcomx.OrdinancesResult, error) {
	var env struct {
		Data *gedcomx.OrdinancesResult `json:"data"`
	}
	path := "/service/tree/tree-data/reservations/person/" + id + "/ordinances"
	ok, err := c.client.getJSON(ctx, path, acceptGedcomX, &env)
	if err != nil || !ok {
		return nil, err
	}
	return env.Data, nil
}

func (c *Connector) contributors(ctx context.Context, path string) ([]string, error) {
	var env changesEnvelope
	ok, err := c.client.getJSON(ctx, path, acceptAtom, &env)
	if err != nil || !ok {
		return nil, err
	}
	seen := make(map[string]struct{})
	var names []string
	for _, entry := range env.Entries {
		for _, contributor := range entry.Contributors {
			if _, ok := seen[contributor.Name]; ok {
				continue
			}
			seen[contributor.Name] = struct{}{}
			names = append(names, contributor.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}

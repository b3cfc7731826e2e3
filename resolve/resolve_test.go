package resolve

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbadges/badgecheck/badge"
	"github.com/openbadges/badgecheck/loader"
	"github.com/openbadges/badgecheck/schema"
)

const (
	badgeURL  = "http://example.org/badge1.json"
	issuerURL = "http://example.org/issuer.json"
)

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func v10Assertion(t *testing.T) *badge.Component {
	return &badge.Component{
		Role: badge.RoleAssertion,
		Object: decode(t, `{
			"uid": "abc123",
			"recipient": {"identity": "sha256$abc", "type": "email", "hashed": true, "salt": "s"},
			"badge": "`+badgeURL+`",
			"verify": {"type": "hosted", "url": "http://example.org/assertion1.json"},
			"issuedOn": "2015-04-30"
		}`),
		Version: schema.KeyV10Strict,
	}
}

func staticLoader(t *testing.T) loader.StaticLoader {
	return loader.StaticLoader{
		badgeURL: decode(t, `{
			"name": "Awesome Robotics Badge",
			"description": "For doing awesome things with robots.",
			"image": "http://example.org/robotics.png",
			"criteria": "http://example.org/robotics-criteria.html",
			"issuer": "`+issuerURL+`"
		}`),
		issuerURL: decode(t, `{"name": "An Example Badge Issuer", "url": "http://example.org"}`),
	}
}

func newResolver(t *testing.T, l loader.Loader) *Resolver {
	t.Helper()
	d, err := schema.DefaultDetector()
	require.NoError(t, err)
	r, err := NewResolver(d, l)
	require.NoError(t, err)
	return r
}

func Test_Resolve(t *testing.T) {
	t.Run("it fetches and classifies linked components", func(t *testing.T) {
		l := staticLoader(t)
		r := newResolver(t, l)
		assertion := v10Assertion(t)

		graph, err := r.Resolve(context.Background(), assertion)
		require.NoError(t, err)

		assert.Same(t, assertion, graph.Assertion)
		wantBadgeClass := &badge.Component{
			Role:    badge.RoleBadgeClass,
			Object:  l[badgeURL],
			URL:     badgeURL,
			Version: schema.KeyV10Strict,
		}
		if !cmp.Equal(wantBadgeClass, graph.BadgeClass) {
			t.Fatalf("badge class did not match: %s", cmp.Diff(wantBadgeClass, graph.BadgeClass))
		}
		wantIssuer := &badge.Component{
			Role:    badge.RoleIssuer,
			Object:  l[issuerURL],
			URL:     issuerURL,
			Version: schema.KeyV10Strict,
		}
		if !cmp.Equal(wantIssuer, graph.Issuer) {
			t.Fatalf("issuer did not match: %s", cmp.Diff(wantIssuer, graph.Issuer))
		}
		assert.Equal(t, "An Example Badge Issuer", graph.Issuer.String("name"))
	})

	t.Run("it adopts inline components without fetching", func(t *testing.T) {
		var calls int32
		l := loader.Func(func(context.Context, string) (map[string]any, error) {
			atomic.AddInt32(&calls, 1)
			return nil, errors.New("unexpected fetch")
		})
		r := newResolver(t, l)

		assertion := &badge.Component{
			Role: badge.RoleAssertion,
			Object: decode(t, `{
				"recipient": "sha256$abc",
				"salt": "s",
				"badge": {
					"version": "0.5.0",
					"name": "Old School",
					"image": "/img.png",
					"description": "An early badge",
					"criteria": "/criteria",
					"issuer": {"origin": "http://example.org", "name": "Example"}
				}
			}`),
			Version: schema.KeyV05,
		}

		graph, err := r.Resolve(context.Background(), assertion)
		require.NoError(t, err)
		assert.Equal(t, int32(0), calls)
		assert.Empty(t, graph.BadgeClass.URL)
		assert.Equal(t, schema.KeyV05, graph.BadgeClass.Version)
		assert.Equal(t, schema.KeyV05, graph.Issuer.Version)
	})

	t.Run("it stops at the first failed fetch and names the URL", func(t *testing.T) {
		var calls int32
		l := loader.Func(func(_ context.Context, url string) (map[string]any, error) {
			atomic.AddInt32(&calls, 1)
			return nil, &loader.StatusError{URL: url, StatusCode: 404}
		})
		r := newResolver(t, l)

		graph, err := r.Resolve(context.Background(), v10Assertion(t))

		var fetchErr *FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, badge.RoleBadgeClass, fetchErr.Role)
		assert.Equal(t, badgeURL, fetchErr.URL)
		assert.Contains(t, err.Error(), badgeURL)

		var statusErr *loader.StatusError
		assert.ErrorAs(t, err, &statusErr)

		assert.Equal(t, int32(1), calls)
		require.NotNil(t, graph)
		assert.NotNil(t, graph.Assertion)
		assert.Nil(t, graph.BadgeClass)
		assert.Nil(t, graph.Issuer)
	})

	t.Run("it keeps the badge class when the issuer fetch fails", func(t *testing.T) {
		l := staticLoader(t)
		delete(l, issuerURL)
		r := newResolver(t, l)

		graph, err := r.Resolve(context.Background(), v10Assertion(t))

		var fetchErr *FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, badge.RoleIssuer, fetchErr.Role)
		assert.ErrorIs(t, err, loader.ErrNotFound)
		assert.NotNil(t, graph.BadgeClass)
		assert.Nil(t, graph.Issuer)
	})

	t.Run("it leaves missing links for structural validation", func(t *testing.T) {
		r := newResolver(t, staticLoader(t))
		assertion := v10Assertion(t)
		assertion.Object["badge"] = 42.0

		graph, err := r.Resolve(context.Background(), assertion)
		require.NoError(t, err)
		assert.Nil(t, graph.BadgeClass)
	})

	t.Run("it records unclassifiable components with an empty version", func(t *testing.T) {
		l := staticLoader(t)
		l[issuerURL] = map[string]any{"nothing": "useful"}
		r := newResolver(t, l)

		graph, err := r.Resolve(context.Background(), v10Assertion(t))
		require.NoError(t, err)
		assert.Equal(t, "", graph.Issuer.Version)
	})
}

func Test_NewResolver(t *testing.T) {
	d, err := schema.DefaultDetector()
	require.NoError(t, err)

	_, err = NewResolver(nil, loader.StaticLoader{})
	assert.Error(t, err)
	_, err = NewResolver(d, nil)
	assert.Error(t, err)

	r, err := NewResolver(d, loader.StaticLoader{})
	require.NoError(t, err)
	_, err = r.Resolve(context.Background(), nil)
	assert.Error(t, err)
}

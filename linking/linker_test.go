package linking

import (
	"testing"
	"time"

	"github.com/poiesic/jurorlink/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scored(match core.RawMatch, confidence int) core.ScoredCandidate {
	return core.ScoredCandidate{Match: match, ConfidenceScore: confidence}
}

func TestLinkStrength_StrongSignals(t *testing.T) {
	tests := []struct {
		name string
		a, b core.RawMatch
		want int
	}{
		{
			name: "shared email alone",
			a:    core.RawMatch{FirstName: "John", LastName: "Smith", Email: "js@example.com"},
			b:    core.RawMatch{FirstName: "Pat", LastName: "Doe", Email: "JS@example.com"},
			want: 5,
		},
		{
			name: "shared phone with different formatting",
			a:    core.RawMatch{Phone: "(213) 555-0188"},
			b:    core.RawMatch{Phone: "213-555-0188"},
			want: 5,
		},
		{
			name: "birth year plus last name counts once",
			a:    core.RawMatch{LastName: "Smith", BirthYear: 1982},
			b:    core.RawMatch{LastName: "smith", BirthYear: 1982},
			want: 5,
		},
		{
			name: "empty emails never match",
			a:    core.RawMatch{FirstName: "John"},
			b:    core.RawMatch{FirstName: "Pat"},
			want: 0,
		},
		{
			name: "capped at 10",
			a: core.RawMatch{
				FirstName: "John", LastName: "Smith", Email: "js@example.com",
				Phone: "2135550188", BirthYear: 1982, City: "Los Angeles",
			},
			b: core.RawMatch{
				FirstName: "John", LastName: "Smith", Email: "js@example.com",
				Phone: "2135550188", BirthYear: 1982, City: "Los Angeles",
			},
			want: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LinkStrength(&tt.a, &tt.b))
		})
	}
}

func TestLinkStrength_ModerateSignalsAccumulate(t *testing.T) {
	// Same full name (+3) and same city (+2) reach the threshold together.
	a := core.RawMatch{FirstName: "John", LastName: "Smith", City: "Los Angeles"}
	b := core.RawMatch{FirstName: "John", LastName: "Smith", City: "los angeles"}
	assert.Equal(t, 5, LinkStrength(&a, &b))

	// Name alone stays below the threshold.
	c := core.RawMatch{FirstName: "John", LastName: "Smith"}
	d := core.RawMatch{FirstName: "John", LastName: "Smith"}
	assert.Equal(t, 3, LinkStrength(&c, &d))
}

func TestLinkStrength_AgeDerivedFromBirthYear(t *testing.T) {
	// The voter file reports birth years, not ages; proximity still fires
	// against an age-carrying record from another source.
	a := core.RawMatch{FirstName: "John", LastName: "Smith", BirthYear: 1983}
	b := core.RawMatch{FirstName: "John", LastName: "Smith", Age: time.Now().Year() - 1983}

	// Full name (+3) and derived age proximity (+1).
	assert.Equal(t, 4, LinkStrength(&a, &b))
}

func TestLinkStrength_TruncatedZipStillMatches(t *testing.T) {
	// A source that strips leading zeros emits four-digit codes; the zip
	// signal compares the digits both sides carry.
	a := core.RawMatch{FirstName: "John", LastName: "Smith", ZipCode: "9001"}
	b := core.RawMatch{FirstName: "John", LastName: "Smith", ZipCode: "90012"}

	// Full name (+3) and zip (+2) reach the threshold.
	assert.Equal(t, 5, LinkStrength(&a, &b))
}

func TestCluster_SharedEmailLinksDespiteDifferentFields(t *testing.T) {
	candidates := []core.ScoredCandidate{
		scored(core.RawMatch{
			SourceType: "voter_file", FirstName: "John", LastName: "Smith",
			City: "Los Angeles", Email: "same@example.com",
		}, 80),
		scored(core.RawMatch{
			SourceType: "people_search", FirstName: "Jonathan", LastName: "Smythe",
			City: "Portland", Email: "same@example.com",
		}, 55),
	}

	clusters := Cluster(candidates)
	require.Len(t, clusters, 1)
	assert.Len(t, clusters[0].Members, 2)
	assert.Equal(t, 2, clusters[0].SourceCount)
}

func TestCluster_LastNameOnlyStaysSeparate(t *testing.T) {
	candidates := []core.ScoredCandidate{
		scored(core.RawMatch{SourceType: "voter_file", FirstName: "John", LastName: "Smith"}, 70),
		scored(core.RawMatch{SourceType: "people_search", FirstName: "Mary", LastName: "Smith"}, 60),
	}

	clusters := Cluster(candidates)
	assert.Len(t, clusters, 2)
}

func TestCluster_NameAndAgeAloneDoNotMerge(t *testing.T) {
	// Same full name (+3) and age within 2 years (+1) totals 4: below the
	// threshold, so the two records stay in separate clusters.
	a := scored(core.RawMatch{
		SourceType: "voter_file", FirstName: "John", LastName: "Smith",
		Age: 42, City: "Los Angeles",
	}, 80)
	b := scored(core.RawMatch{
		SourceType: "people_search", FirstName: "John", LastName: "Smith",
		Age: 43,
	}, 62)

	require.Equal(t, 4, LinkStrength(&a.Match, &b.Match))

	clusters := Cluster([]core.ScoredCandidate{a, b})
	assert.Len(t, clusters, 2)
}

func TestCluster_TransitiveLinking(t *testing.T) {
	// a links to b via email, b links to c via phone; all three end up in
	// one cluster even though a and c share nothing directly.
	candidates := []core.ScoredCandidate{
		scored(core.RawMatch{SourceType: "voter_file", Email: "x@example.com"}, 50),
		scored(core.RawMatch{SourceType: "people_search", Email: "x@example.com", Phone: "2135550188"}, 65),
		scored(core.RawMatch{SourceType: "fec_donors", Phone: "(213) 555-0188"}, 40),
	}

	clusters := Cluster(candidates)
	require.Len(t, clusters, 1)
	assert.Len(t, clusters[0].Members, 3)
	assert.Equal(t, 3, clusters[0].SourceCount)
}

func TestCluster_PrimaryAndAggregatedScore(t *testing.T) {
	candidates := []core.ScoredCandidate{
		scored(core.RawMatch{SourceType: "people_search", Email: "x@example.com"}, 60),
		scored(core.RawMatch{SourceType: "voter_file", Email: "x@example.com"}, 90),
	}

	clusters := Cluster(candidates)
	require.Len(t, clusters, 1)

	cluster := clusters[0]
	require.Len(t, cluster.Members, 2)
	assert.Equal(t, 90, cluster.Primary().ConfidenceScore)

	// 0.6*90 + 0.4*60 = 78
	assert.Equal(t, 78, cluster.AggregatedScore)
}

func TestCluster_AggregatedScoreSplitsMinorityWeight(t *testing.T) {
	candidates := []core.ScoredCandidate{
		scored(core.RawMatch{SourceType: "voter_file", Email: "x@example.com"}, 90),
		scored(core.RawMatch{SourceType: "people_search", Email: "x@example.com"}, 60),
		scored(core.RawMatch{SourceType: "fec_donors", Email: "x@example.com"}, 30),
	}

	clusters := Cluster(candidates)
	require.Len(t, clusters, 1)

	// 0.6*90 + 0.2*60 + 0.2*30 = 72
	assert.Equal(t, 72, clusters[0].AggregatedScore)
}

func TestCluster_SingletonKeepsOwnScore(t *testing.T) {
	clusters := Cluster([]core.ScoredCandidate{
		scored(core.RawMatch{SourceType: "voter_file", LastName: "Smith"}, 47),
	})

	require.Len(t, clusters, 1)
	assert.Equal(t, 47, clusters[0].AggregatedScore)
	assert.Equal(t, 1, clusters[0].SourceCount)
}

func TestCluster_SourceCountIsDistinctSources(t *testing.T) {
	// Two matches from the same source cluster together but count one source.
	candidates := []core.ScoredCandidate{
		scored(core.RawMatch{SourceType: "voter_file", Email: "x@example.com"}, 70),
		scored(core.RawMatch{SourceType: "voter_file", Email: "x@example.com"}, 65),
	}

	clusters := Cluster(candidates)
	require.Len(t, clusters, 1)
	assert.Equal(t, 1, clusters[0].SourceCount)
}

func TestCluster_Empty(t *testing.T) {
	assert.Nil(t, Cluster(nil))
	assert.Nil(t, Cluster([]core.ScoredCandidate{}))
}

func TestUnionFind(t *testing.T) {
	uf := newUnionFind(5)
	uf.union(0, 1)
	uf.union(3, 4)

	assert.Equal(t, uf.find(0), uf.find(1))
	assert.Equal(t, uf.find(3), uf.find(4))
	assert.NotEqual(t, uf.find(0), uf.find(3))
	assert.NotEqual(t, uf.find(2), uf.find(0))

	uf.union(1, 3)
	assert.Equal(t, uf.find(0), uf.find(4))
}

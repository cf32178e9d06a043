package community

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/graphrag/internal/core/model"
)

type mockStore struct {
	graph     *model.Graph
	loadErr   error
	saveErr   error
	saved     map[string]int
	deletions int
}

func (m *mockStore) LoadGraph(ctx context.Context) (*model.Graph, error) {
	return m.graph, m.loadErr
}

func (m *mockStore) SaveAssignments(ctx context.Context, assignments map[string]int) error {
	m.saved = assignments
	return m.saveErr
}

func (m *mockStore) DeleteCommunitySummaries(ctx context.Context) error {
	m.deletions++
	return nil
}

type mockRecorder struct {
	count      int
	modularity float64
}

func (m *mockRecorder) ObserveCommunities(count int, modularity float64) {
	m.count = count
	m.modularity = modularity
}

func TestDetect(t *testing.T) {
	g := twoTriangles(true)
	g.Nodes = append(g.Nodes, "loner")
	store := &mockStore{graph: g}
	rec := &mockRecorder{}
	d := &Detector{Store: store, MinSize: 2, Metrics: rec}

	result, err := d.Detect(context.Background(), AlgorithmLabelPropagation)
	require.NoError(t, err)

	assert.Equal(t, AlgorithmLabelPropagation, result.Algorithm)
	assert.Equal(t, 7, result.NodeCount)
	assert.Equal(t, 7, result.EdgeCount)
	assert.Equal(t, 3, result.CommunityCount)
	assert.Len(t, result.Assignments, 7)
	assert.Greater(t, result.Modularity, 0.0)

	assert.Equal(t, triangles, store.saved)
	assert.Equal(t, 1, store.deletions)
	assert.Equal(t, 3, rec.count)
	assert.Equal(t, result.Modularity, rec.modularity)
}

func TestDetectDefaultsAlgorithm(t *testing.T) {
	d := &Detector{Store: &mockStore{graph: twoTriangles(false)}, Algorithm: AlgorithmComponents}
	result, err := d.Detect(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, AlgorithmComponents, result.Algorithm)
	assert.Equal(t, 2, result.CommunityCount)
}

func TestDetectEmptyGraph(t *testing.T) {
	d := &Detector{Store: &mockStore{graph: &model.Graph{}}}
	_, err := d.Detect(context.Background(), "")
	assert.ErrorIs(t, err, model.ErrEmptyGraph)
}

func TestDetectErrors(t *testing.T) {
	d := &Detector{Store: &mockStore{loadErr: errors.New("down")}}
	_, err := d.Detect(context.Background(), "")
	assert.ErrorContains(t, err, "down")

	d = &Detector{Store: &mockStore{graph: twoTriangles(false), saveErr: errors.New("write failed")}}
	_, err = d.Detect(context.Background(), "")
	assert.ErrorContains(t, err, "write failed")

	_, err = d.Detect(context.Background(), "unknown")
	assert.Error(t, err)
}

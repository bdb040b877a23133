/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: summary_test.go
Description: Tests for summary folding, merging and the collector.
*/

package aggregate_test

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/kleascm/enro/pkg/aggregate"
	"github.com/kleascm/enro/pkg/classify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []aggregate.Record {
	return []aggregate.Record{
		{Path: "a.zip", Classification: classify.Archive("ZIP"), Entropy: 7.98, Size: 100},
		{Path: "b.rar", Classification: classify.Archive("RAR"), Entropy: 7.95, Size: 200},
		{Path: "c.txt", Classification: classify.Of(classify.KindPlainText), Entropy: 4.25, Size: 300},
		{Path: "d.bin", Classification: classify.Of(classify.KindEncrypted), Entropy: 7.99, Size: 400},
		{Path: "e.dat", Classification: classify.Of(classify.KindRandom), Entropy: 7.6, Size: 500},
		{Path: "f.o", Classification: classify.Of(classify.KindBinary), Entropy: 5.5, Size: 600},
		{Path: "g.pdf", Classification: classify.Document("PDF"), Entropy: 7.5, Size: 700},
	}
}

func TestFold(t *testing.T) {
	s := aggregate.NewSummary(0)
	for _, rec := range sampleRecords() {
		s.Fold(rec)
	}

	assert.Equal(t, 7, s.Files)
	assert.Equal(t, int64(2800), s.TotalBytes)
	assert.Equal(t, 2, s.Count(classify.KindArchive), "ZIP and RAR share the archive bucket")
	assert.Equal(t, 1, s.Labels["Archive (ZIP)"])
	assert.Equal(t, 1, s.Labels["Archive (RAR)"])
	assert.Equal(t, 4, s.HighEntropy, "7.5 itself is not high entropy")
	assert.InDelta(t, (7.98+7.95+4.25+7.99+7.6+5.5+7.5)/7, s.AverageEntropy(), 1e-9)
}

func TestAverageOfEmptySummary(t *testing.T) {
	s := aggregate.NewSummary(0)
	assert.Equal(t, 0.0, s.AverageEntropy())
	assert.Empty(t, s.Categories())
	assert.Equal(t, aggregate.DefaultHighEntropy, s.HighThreshold)
}

func TestOrderAndPartitionIndependence(t *testing.T) {
	recs := sampleRecords()

	sequential := aggregate.NewSummary(0)
	for _, rec := range recs {
		sequential.Fold(rec)
	}

	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 20; round++ {
		shuffled := append([]aggregate.Record(nil), recs...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		parts := []*aggregate.Summary{aggregate.NewSummary(0), aggregate.NewSummary(0), aggregate.NewSummary(0)}
		for i, rec := range shuffled {
			parts[i%len(parts)].Fold(rec)
		}

		merged := aggregate.NewSummary(0)
		for i := len(parts) - 1; i >= 0; i-- {
			merged.Merge(parts[i])
		}

		assert.Equal(t, sequential.Counts, merged.Counts)
		assert.Equal(t, sequential.Labels, merged.Labels)
		assert.Equal(t, sequential.Files, merged.Files)
		assert.Equal(t, sequential.HighEntropy, merged.HighEntropy)
		assert.InDelta(t, sequential.AverageEntropy(), merged.AverageEntropy(), 1e-9)
	}
}

func TestCategoriesOrder(t *testing.T) {
	s := aggregate.NewSummary(0)
	for _, rec := range sampleRecords() {
		s.Fold(rec)
	}

	cats := s.Categories()
	require.Len(t, cats, 6)
	assert.Equal(t, aggregate.Category{Name: "Archive", Count: 2}, cats[0])
	// ties sorted by name
	names := make([]string, 0, len(cats)-1)
	for _, c := range cats[1:] {
		assert.Equal(t, 1, c.Count)
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Binary", "Document", "Encrypted", "Plain Text", "Random Data"}, names)

	labels := s.LabelCategories()
	require.Len(t, labels, 7)
	assert.Equal(t, "Archive (RAR)", labels[0].Name)
}

func TestMergeNilAndClone(t *testing.T) {
	s := aggregate.NewSummary(0)
	s.Fold(sampleRecords()[0])
	s.Merge(nil)
	assert.Equal(t, 1, s.Files)

	c := s.Clone()
	c.Fold(sampleRecords()[1])
	assert.Equal(t, 1, s.Files)
	assert.Equal(t, 2, c.Files)
}

func TestCollectorConcurrentAdds(t *testing.T) {
	c := aggregate.NewCollector(0, true)
	recs := sampleRecords()

	var wg sync.WaitGroup
	for w := 0; w < 10; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, rec := range recs {
				c.Add(rec)
			}
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	assert.Equal(t, 70, snap.Files)
	assert.Equal(t, 20, snap.Count(classify.KindArchive))
	assert.Len(t, c.Records(), 70)

	part := aggregate.NewSummary(0)
	part.Fold(recs[2])
	c.MergeSummary(part)
	assert.Equal(t, 71, c.Snapshot().Files)
}

// Package testutil provides test data generators.
package testutil

import (
	"fmt"
	"math/rand"
)

// TestDataGenerator provides methods for generating test data.
type TestDataGenerator struct {
	rand *rand.Rand
}

// NewTestDataGenerator creates a new test data generator with a seeded random source.
func NewTestDataGenerator(seed int64) *TestDataGenerator {
	return &TestDataGenerator{
		rand: rand.New(rand.NewSource(seed)),
	}
}

// GenerateKeys returns count object keys under prefix, in lexicographic order.
func GenerateKeys(prefix string, count int) []string {
	keys := make([]string, count)
	for i := range keys {
		keys[i] = fmt.Sprintf("%sobject-%05d.txt", prefix, i)
	}
	return keys
}

// GenerateTree returns keys spread over dirs pseudo-directories under prefix,
// each preceded by its directory marker. Exactly files keys are not markers.
func (g *TestDataGenerator) GenerateTree(prefix string, dirs, files int) (keys []string, markers int) {
	if dirs <= 0 {
		dirs = 1
	}
	perDir := make([]int, dirs)
	for i := 0; i < files; i++ {
		perDir[g.rand.Intn(dirs)]++
	}
	for d, n := range perDir {
		dir := fmt.Sprintf("%sdir%02d/", prefix, d)
		keys = append(keys, dir)
		markers++
		for i := 0; i < n; i++ {
			keys = append(keys, fmt.Sprintf("%sfile-%04d.bin", dir, i))
		}
	}
	return keys, markers
}

// GenerateTestBucketName generates a unique bucket name for testing.
func GenerateTestBucketName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, rand.Int63())
}

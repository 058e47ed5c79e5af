package settings

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuntime(t *testing.T) {
	_, err := NewRuntime("bogus")
	assert.ErrorIs(t, err, ErrInvalidMethod)

	r, err := NewRuntime(MethodPDFExtract)
	require.NoError(t, err)
	assert.Equal(t, MethodPDFExtract, r.Snapshot().InsuranceMethod)

	snap, err := r.SetInsuranceMethod("vector_search")
	require.NoError(t, err)
	assert.Equal(t, MethodVectorSearch, snap.InsuranceMethod)

	_, err = r.SetInsuranceMethod("bogus")
	assert.ErrorIs(t, err, ErrInvalidMethod)
	assert.Equal(t, MethodVectorSearch, r.Snapshot().InsuranceMethod)
}

func TestRuntimeConcurrentAccess(t *testing.T) {
	r, err := NewRuntime(MethodPDFExtract)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				r.SetInsuranceMethod(string(MethodVectorSearch))
			} else {
				r.SetInsuranceMethod(string(MethodPDFExtract))
			}
		}(i)
		go func() {
			defer wg.Done()
			m := r.Snapshot().InsuranceMethod
			assert.True(t, m == MethodPDFExtract || m == MethodVectorSearch)
		}()
	}
	wg.Wait()
}

package coupon

import (
	"context"
	"sync"
	"testing"

	"tienda-api/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestIntegration_FallbackToLocalCatalog loads a catalog through the same
// loader chain the server builds when S3 is unreachable.
func TestIntegration_FallbackToLocalCatalog(t *testing.T) {
	logger := zerolog.Nop()
	path := createTestCatalogFile(t, "catalog.csv.gz", []string{
		"CODE,TYPE,VALUE,MIN_ORDER,MAX_DISCOUNT,EXPIRES_AT",
		"BIENVENIDA10,percentage,10,0,500000,",
		"ENVIOGRATIS,fixed,350000,2000000,,",
	})

	s3 := newS3Loader(&fakeS3{err: assert.AnError}, "bucket", logger)
	loader := NewFallbackLoader(s3, NewFileLoader(logger), "coupons/", true, logger)

	v, err := NewValidator(context.Background(), &ValidatorConfig{FilePath: path}, loader, logger)
	require.NoError(t, err)
	defer v.Close()

	discount, err := v.Discount(context.Background(), "bienvenida10", 1_500_000)
	require.NoError(t, err)
	assert.Equal(t, int64(150_000), discount)

	_, err = v.Discount(context.Background(), "ENVIOGRATIS", 1_500_000)
	assert.ErrorIs(t, err, model.ErrCouponMinimumNotMet)
}

func TestIntegration_ConcurrentLookups(t *testing.T) {
	v := newTestValidator(t, "BIENVENIDA10,percentage,10,0,,")
	defer v.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			discount, err := v.Discount(context.Background(), "BIENVENIDA10", 1_000_000)
			assert.NoError(t, err)
			assert.Equal(t, int64(100_000), discount)
		}()
	}
	wg.Wait()
}

//go:build wireinject

package di

import (
	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/matheuskafuri/headlines/internal/config"
	"github.com/matheuskafuri/headlines/internal/imagecache"
)

// InitializeReader wires the reader components together.
func InitializeReader(cfg *config.Config, indexPath IndexPath, logger zerolog.Logger, notifier imagecache.Notifier) (*Reader, func(), error) {
	wire.Build(
		provideHTTPClient,
		provideFetcher,
		providePager,
		provideMediaIndex,
		provideStore,
		providePermissions,
		provideImages,
		newReader,
	)
	return nil, nil, nil
}

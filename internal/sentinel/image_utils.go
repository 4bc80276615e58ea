package sentinel

import (
	"errors"
	"fmt"
	"sync"

	"github.com/airbusgeo/godal"
)

var registerOnce sync.Once

func registerDrivers() {
	registerOnce.Do(godal.RegisterAll)
}

// Extractor turns a raster path into index statistics. Implementations must not
// return errors: anything that goes wrong is reported through Result.Status.
type Extractor interface {
	Extract(path string) Result
}

type GodalExtractor struct {
	opts Options
}

func NewGodalExtractor(opts Options) *GodalExtractor {
	registerDrivers()
	return &GodalExtractor{opts: opts}
}

func (e *GodalExtractor) Extract(path string) Result {
	data, noData, err := readFirstBand(path)
	if err != nil {
		return Unreadable(err)
	}
	return ComputeStats(data, noData, e.opts)
}

func quietErrors() godal.ErrorHandler {
	return func(ec godal.ErrorCategory, code int, msg string) error {
		if ec <= godal.CE_Warning {
			return nil
		}
		return errors.New(msg)
	}
}

// readFirstBand opens the raster, reads band 1 as float64 and closes the dataset
// before returning, whatever happens in between.
func readFirstBand(path string) ([]float64, *float64, error) {
	dataset, err := godal.Open(path, godal.ErrLogger(quietErrors()))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open raster %s: %w", path, err)
	}
	defer dataset.Close()

	bands := dataset.Bands()
	if len(bands) == 0 {
		return nil, nil, fmt.Errorf("raster %s has no bands", path)
	}
	band := bands[0]

	width := dataset.Structure().SizeX
	height := dataset.Structure().SizeY
	data := make([]float64, width*height)
	if err := band.Read(0, 0, data, width, height, godal.ErrLogger(quietErrors())); err != nil {
		return nil, nil, fmt.Errorf("failed to read raster data from %s: %w", path, err)
	}

	var noData *float64
	if nd, ok := band.NoData(); ok {
		noData = &nd
	}

	return data, noData, nil
}

package delivery

import (
	"errors"

	"github.com/Raf-Pimentel/PantanalBurns/internal/dataset"
	"github.com/Raf-Pimentel/PantanalBurns/internal/ui"
)

// Extract merges the manifests, extracts every scene once and applies both gap
// policies. The result table is always written when extraction succeeds.
func (r *Runner) Extract() (*Report, error) {
	report := &Report{}
	err := r.extract(report)
	r.finish(report, err)
	return report, err
}

func (r *Runner) extract(report *Report) error {
	ui.PrintSection("Extracting regional index statistics")

	var scenes []dataset.Scene
	err := r.stage(report, "LoadManifests", func() error {
		nbr, err := dataset.LoadManifest(r.cfg.NBRManifest, dataset.ColumnNBRPath)
		if err != nil {
			return err
		}
		ndvi, err := dataset.LoadManifest(r.cfg.NDVIManifest, dataset.ColumnNDVIPath)
		if err != nil {
			return err
		}
		scenes, err = dataset.MergeManifests(nbr, ndvi)
		if err != nil {
			return err
		}
		ui.PrintInfo("NBR manifest: %d scenes, NDVI manifest: %d scenes, merged: %d", len(nbr), len(ndvi), len(scenes))
		return nil
	})
	if err != nil {
		return err
	}
	report.ScenesMerged = len(scenes)

	var extraction *dataset.Extraction
	err = r.stage(report, "ExtractStatistics", func() error {
		builder := dataset.NewSeriesBuilder(r.extractor, dataset.BuilderOptions{
			Indexes:      r.cfg.IndexSources(),
			Workers:      r.cfg.Workers,
			ShowProgress: r.showProgress,
			Metrics:      r.metrics,
		})
		var err error
		extraction, err = builder.Extract(scenes)
		return err
	})
	if err != nil {
		return err
	}

	var table *dataset.BuildResult
	err = r.stage(report, "BuildResultTable", func() error {
		var err error
		table, err = extraction.Apply(dataset.GapPolicyDrop)
		if err != nil {
			return err
		}
		report.Rows = table.Rows
		r.metrics.SetTable(report.ScenesMerged, len(report.Rows))

		path := r.resultPath(ResultTableFile)
		if err := dataset.WriteResultTable(path, report.Rows); err != nil {
			return err
		}
		report.Outputs = append(report.Outputs, path)
		ui.PrintSuccess("Result table with %d rows saved to %s", len(report.Rows), path)
		return nil
	})
	if err != nil {
		return err
	}

	return r.stage(report, "BuildSeries", func() error {
		policy := r.cfg.SeriesGapPolicy
		if policy == dataset.GapPolicyDrop {
			report.Series = table.Series
		} else {
			series, err := extraction.Apply(policy)
			if errors.Is(err, dataset.ErrNoObservations) {
				ui.PrintWarning("Regional series unavailable: %v", err)
				return nil
			}
			if err != nil {
				return err
			}
			report.Series = series.Series
		}

		if len(report.Series[dataset.IndexNBR]) == 0 {
			ui.PrintWarning("Regional series unavailable: no scene kept under the %s policy", policy)
			return nil
		}
		ui.PrintInfo("Regional series built with the %s policy: %d points", policy, len(report.Series[dataset.IndexNBR]))
		return nil
	})
}

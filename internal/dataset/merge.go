package dataset

import (
	"time"

	"github.com/Raf-Pimentel/PantanalBurns/internal/utils"
)

// MergeManifests inner-joins the two manifests on scene id and orders the result by
// acquisition date. Scenes present in only one manifest are left out without notice.
// When a manifest repeats a scene id, its first occurrence wins. The date comes from
// the NBR manifest.
func MergeManifests(nbr, ndvi []ManifestRow) ([]Scene, error) {
	ndviPaths := make(map[string]string, len(ndvi))
	for _, row := range ndvi {
		if _, ok := ndviPaths[row.SceneID]; !ok {
			ndviPaths[row.SceneID] = row.Path
		}
	}

	seen := make(map[string]struct{}, len(nbr))
	scenes := make([]Scene, 0, len(nbr))
	for _, row := range nbr {
		ndviPath, ok := ndviPaths[row.SceneID]
		if !ok {
			continue
		}
		if _, dup := seen[row.SceneID]; dup {
			continue
		}
		seen[row.SceneID] = struct{}{}

		scenes = append(scenes, Scene{
			SceneID:      row.SceneID,
			DateAcquired: row.DateAcquired,
			NBRPath:      row.Path,
			NDVIPath:     ndviPath,
		})
	}

	if len(scenes) == 0 {
		return nil, ErrNoScenes
	}

	return utils.SortByDate(scenes, sceneDate, true), nil
}

func sceneDate(s Scene) time.Time {
	return s.DateAcquired
}

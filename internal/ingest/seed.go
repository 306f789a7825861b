package ingest

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/abuzz-labs/intel-cli/internal/model"
	"github.com/abuzz-labs/intel-cli/internal/store"
)

// defaultRoster is the priority competitor set tracked out of the box.
var defaultRoster = []string{
	"Mappedin",
	"22Miles",
	"Pointr",
	"MapsPeople",
	"Broadsign",
	"Stratacache",
	"Poppulo",
	"Korbyt",
	"IndoorAtlas",
	"Inpixon",
	"Quuppa",
	"MazeMap",
	"Navori",
	"ViaDirect",
	"ZetaDisplay",
}

type seedFile struct {
	Competitors []seedCompetitor `yaml:"competitors"`
}

type seedCompetitor struct {
	Name   string `yaml:"name"`
	Status string `yaml:"status"`
}

// Seed loads the competitor roster into the store. When path is empty the
// built-in priority roster is used; otherwise the YAML file at path wins.
// Existing names are updated in place, so re-seeding is safe.
func Seed(ctx context.Context, s store.Store, path string) (int, error) {
	roster, err := loadRoster(path)
	if err != nil {
		return 0, err
	}

	for _, c := range roster {
		existing, err := s.GetCompetitorByName(ctx, c.Name)
		if err != nil {
			return 0, eris.Wrapf(err, "ingest: seed lookup %s", c.Name)
		}
		if existing != nil {
			c.ID = existing.ID
		} else if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if err := s.InsertCompetitor(ctx, c); err != nil {
			return 0, eris.Wrapf(err, "ingest: seed %s", c.Name)
		}
	}

	zap.L().Info("roster seeded", zap.Int("competitors", len(roster)))
	return len(roster), nil
}

func loadRoster(path string) ([]model.Competitor, error) {
	if path == "" {
		roster := make([]model.Competitor, len(defaultRoster))
		for i, name := range defaultRoster {
			roster[i] = model.Competitor{Name: name, Status: model.CompetitorActive}
		}
		return roster, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read seed file %s", path)
	}

	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "ingest: parse seed file %s", path)
	}
	if len(f.Competitors) == 0 {
		return nil, eris.Errorf("ingest: seed file %s lists no competitors", path)
	}

	roster := make([]model.Competitor, 0, len(f.Competitors))
	for _, sc := range f.Competitors {
		if sc.Name == "" {
			return nil, eris.Errorf("ingest: seed file %s has a competitor without a name", path)
		}
		status := model.CompetitorStatus(sc.Status)
		if status == "" {
			status = model.CompetitorActive
		}
		roster = append(roster, model.Competitor{Name: sc.Name, Status: status})
	}
	return roster, nil
}

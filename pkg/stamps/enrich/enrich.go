// Package enrich joins precomputed datasets onto stamps by id: image
// embeddings, detected regions, color palettes and the allowlist of ids
// that have a processed image.
package enrich

import (
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/mnav0/major-studio-1/pkg/stamps/color"
	"github.com/mnav0/major-studio-1/pkg/stamps/internalerr"
	"github.com/mnav0/major-studio-1/pkg/stamps/stamp"
)

// Paths locates the dataset files. Empty paths are skipped.
type Paths struct {
	Embeddings string `yaml:"embeddings"`
	Detected   string `yaml:"detected"`
	Colors     string `yaml:"colors"`
	ImageIDs   string `yaml:"image_ids"`
}

// Datasets holds the loaded joins. A nil ImageIDs means no allowlist.
type Datasets struct {
	Embeddings map[string][]float64
	Detected   map[string][]stamp.Region
	Colors     map[string][]color.Swatch
	ImageIDs   map[string]struct{}
}

// Empty reports whether no dataset was loaded.
func (d Datasets) Empty() bool {
	return len(d.Embeddings) == 0 && len(d.Detected) == 0 && len(d.Colors) == 0 && d.ImageIDs == nil
}

// Load reads every configured dataset. A missing or invalid file is an
// error; malformed entries inside a valid file are logged and skipped.
func Load(p Paths, logger *zap.Logger) (Datasets, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var ds Datasets

	if p.Embeddings != "" {
		doc, err := readArray(p.Embeddings)
		if err != nil {
			return Datasets{}, err
		}
		ds.Embeddings = ParseEmbeddings(doc, logger.With(zap.String("dataset", "embeddings")))
	}
	if p.Detected != "" {
		doc, err := readArray(p.Detected)
		if err != nil {
			return Datasets{}, err
		}
		ds.Detected = ParseDetected(doc, logger.With(zap.String("dataset", "detected")))
	}
	if p.Colors != "" {
		doc, err := readArray(p.Colors)
		if err != nil {
			return Datasets{}, err
		}
		ds.Colors = ParseColors(doc, logger.With(zap.String("dataset", "colors")))
	}
	if p.ImageIDs != "" {
		doc, err := readArray(p.ImageIDs)
		if err != nil {
			return Datasets{}, err
		}
		ds.ImageIDs = ParseImageIDs(doc)
	}

	logger.Info("loaded enrichment datasets",
		zap.Int("embeddings", len(ds.Embeddings)),
		zap.Int("detected", len(ds.Detected)),
		zap.Int("colors", len(ds.Colors)),
		zap.Int("image_ids", len(ds.ImageIDs)),
	)
	return ds, nil
}

func readArray(path string) (gjson.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("read dataset %s: %w", path, err)
	}
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, fmt.Errorf("dataset %s: %w: not valid JSON", path, internalerr.ErrInvalidInput)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsArray() {
		return gjson.Result{}, fmt.Errorf("dataset %s: %w: want a JSON array", path, internalerr.ErrInvalidInput)
	}
	return doc, nil
}

// ParseEmbeddings reads [{"id": ..., "embedding": [..]}].
func ParseEmbeddings(doc gjson.Result, logger *zap.Logger) map[string][]float64 {
	out := make(map[string][]float64)
	eachEntry(doc, logger, "embedding", func(id string, v gjson.Result) bool {
		vec := make([]float64, 0, len(v.Array()))
		for _, x := range v.Array() {
			if x.Type != gjson.Number {
				return false
			}
			vec = append(vec, x.Float())
		}
		if len(vec) == 0 {
			return false
		}
		out[id] = vec
		return true
	})
	return out
}

// ParseDetected reads [{"id": ..., "detected": [{label, type, score, box}]}].
func ParseDetected(doc gjson.Result, logger *zap.Logger) map[string][]stamp.Region {
	out := make(map[string][]stamp.Region)
	eachEntry(doc, logger, "detected", func(id string, v gjson.Result) bool {
		regions := []stamp.Region{}
		for _, r := range v.Array() {
			box := r.Get("box").Array()
			if len(box) != 4 {
				continue
			}
			region := stamp.Region{
				Label: r.Get("label").String(),
				Type:  r.Get("type").String(),
				Score: r.Get("score").Float(),
			}
			for i := range box {
				region.Box[i] = box[i].Float()
			}
			regions = append(regions, region)
		}
		out[id] = regions
		return true
	})
	return out
}

// ParseColors reads [{"id": ..., "colorData": [{hex, rgb, hsl, population}]}].
// Swatches missing RGB are derived from hex; missing HSL is derived from RGB.
func ParseColors(doc gjson.Result, logger *zap.Logger) map[string][]color.Swatch {
	out := make(map[string][]color.Swatch)
	eachEntry(doc, logger, "colorData", func(id string, v gjson.Result) bool {
		swatches := []color.Swatch{}
		for _, c := range v.Array() {
			sw, ok := parseSwatch(c)
			if !ok {
				continue
			}
			swatches = append(swatches, sw)
		}
		out[id] = swatches
		return true
	})
	return out
}

func parseSwatch(c gjson.Result) (color.Swatch, bool) {
	sw := color.Swatch{
		Hex:        strings.ToLower(c.Get("hex").String()),
		Population: int(c.Get("population").Int()),
	}
	if rgb := c.Get("rgb").Array(); len(rgb) == 3 {
		sw.RGB = color.RGB{rgb[0].Float(), rgb[1].Float(), rgb[2].Float()}
	} else if parsed, err := color.ParseHex(sw.Hex); err == nil {
		sw.RGB = parsed
	} else {
		return color.Swatch{}, false
	}
	if sw.Hex == "" {
		sw.Hex = sw.RGB.Hex()
	}
	if hsl := c.Get("hsl").Array(); len(hsl) == 3 {
		sw.HSL = [3]float64{hsl[0].Float(), hsl[1].Float(), hsl[2].Float()}
	} else {
		sw.HSL = sw.RGB.HSL()
	}
	return sw, true
}

// ParseImageIDs reads a flat array of ids.
func ParseImageIDs(doc gjson.Result) map[string]struct{} {
	out := make(map[string]struct{})
	doc.ForEach(func(_, v gjson.Result) bool {
		if id := strings.TrimSpace(v.String()); id != "" {
			out[id] = struct{}{}
		}
		return true
	})
	return out
}

// eachEntry walks [{"id": ..., field: ...}] entries, calling fn with the
// id and the field value. Entries without an id or field, or rejected by
// fn, are logged and skipped. Later duplicates override earlier ones.
func eachEntry(doc gjson.Result, logger *zap.Logger, field string, fn func(id string, v gjson.Result) bool) {
	skipped := 0
	index := 0
	doc.ForEach(func(_, entry gjson.Result) bool {
		defer func() { index++ }()
		id := strings.TrimSpace(entry.Get("id").String())
		v := entry.Get(field)
		if id == "" || !v.IsArray() || !fn(id, v) {
			skipped++
			logger.Debug("skipping malformed entry", zap.Int("index", index), zap.String("id", id))
		}
		return true
	})
	if skipped > 0 {
		logger.Warn("skipped malformed entries", zap.Int("count", skipped))
	}
}

// Apply returns copies of stamps with enrichment attached. When an
// allowlist is present, stamps outside it are dropped.
func Apply(stamps []stamp.Stamp, ds Datasets) []stamp.Stamp {
	out := make([]stamp.Stamp, 0, len(stamps))
	for _, s := range stamps {
		if ds.ImageIDs != nil {
			if _, ok := ds.ImageIDs[s.ID]; !ok {
				continue
			}
		}
		if v, ok := ds.Embeddings[s.ID]; ok {
			s.Embedding = append([]float64(nil), v...)
		}
		if v, ok := ds.Detected[s.ID]; ok {
			s.Detected = append([]stamp.Region(nil), v...)
		}
		if v, ok := ds.Colors[s.ID]; ok {
			s.Colors = append([]color.Swatch(nil), v...)
		}
		out = append(out, s)
	}
	return out
}

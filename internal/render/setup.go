package render

import (
	"github.com/mylxsw/asteria/log"

	"github.com/youruser/idcardapp/internal/config"
	"github.com/youruser/idcardapp/internal/fonts"
	imagepkg "github.com/youruser/idcardapp/internal/image"
	"github.com/youruser/idcardapp/internal/photo"
)

// NewFromConfig wires a renderer from configuration. Optional services
// that fail to load are logged and left out.
func NewFromConfig(conf config.Config) *Renderer {
	proc := &photo.Processor{Timeout: conf.PhotoTimeout}
	if conf.FaceCascade != "" {
		det, err := photo.NewPigoDetector(conf.FaceCascade)
		if err != nil {
			log.WithFields(log.Fields{"cascade": conf.FaceCascade}).Warningf("face detection disabled: %v", err)
		} else {
			proc.Detector = det
		}
	}
	if conf.BackgroundRemovalURL != "" {
		proc.Remover = photo.NewHTTPRemover(conf.BackgroundRemovalURL, conf.PhotoTimeout)
	}

	return New(Options{
		Fonts:   fonts.NewRegistry(conf.FontsDir, conf.DefaultFontRegular, conf.DefaultFontBold),
		Fetcher: imagepkg.NewFetcher(conf.FetchTimeout).Restrict(conf.AssetRoots, conf.RemoteHosts),
		Photos:  proc,
		QR:      &imagepkg.QRGenerator{LogoDir: conf.StaticDir, Roots: conf.AssetRoots},
		Quality: conf.JPEGQuality,
		Workers: conf.SheetWorkers,
	})
}

package main

import (
	"flag"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/mylxsw/asteria/log"

	"github.com/youruser/idcardapp/internal/api"
	"github.com/youruser/idcardapp/internal/config"
	imagepkg "github.com/youruser/idcardapp/internal/image"
	"github.com/youruser/idcardapp/internal/render"
)

func main() {
	confPath := flag.String("conf", "", "YAML config file")
	flag.Parse()

	conf, err := config.Load(*confPath)
	if err != nil {
		log.Errorf("load config failed: %v", err)
		os.Exit(1)
	}
	conf.AssetRoots = conf.ServerAssetRoots()

	renderer := render.NewFromConfig(conf)
	handler := api.NewHandler(renderer, &imagepkg.QRGenerator{LogoDir: conf.StaticDir, Roots: conf.AssetRoots}, conf.TemplatesDir)

	r := gin.Default()
	api.RegisterRoutes(r, handler)

	log.Infof("starting server on %s (fonts: %s, templates: %s)", conf.Listen, conf.FontsDir, conf.TemplatesDir)
	if err := r.Run(conf.Listen); err != nil && err != http.ErrServerClosed {
		log.Errorf("server stopped: %v", err)
		os.Exit(1)
	}
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/travelease/internal/models"
	"github.com/joshua-takyi/travelease/internal/services"
)

func packageList(pkgs []*models.TravelPackage) []*models.TravelPackage {
	if pkgs == nil {
		return []*models.TravelPackage{}
	}
	return pkgs
}

// ListPackages serves GET /packages?category=all|domestic|international.
func ListPackages(cs *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		pkgs, err := cs.ListPackages(c.Request.Context(), c.Query("category"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "packages": packageList(pkgs)})
	}
}

func SearchPackages(cs *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		pkgs, err := cs.SearchPackages(c.Request.Context(), c.Query("q"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "packages": packageList(pkgs)})
	}
}

func GetPackage(cs *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id", "package")
		if !ok {
			return
		}

		pkg, err := cs.GetPackage(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "package": pkg})
	}
}

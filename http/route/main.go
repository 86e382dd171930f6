package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/lumenhealth/media-asset-service/http/controller"
	middlewares "github.com/lumenhealth/media-asset-service/http/middleware"
)

func SetupRouter(ctrl *controller.Controller) *gin.Engine {
	r := gin.Default()
	middles, err := middlewares.NewMiddlewares(ctrl)
	if err != nil {
		panic(err)
	}

	r.Use(middles.CORSMiddleware)

	apiRoutes := r.Group("/api/v1/media")
	{
		// Public playback surface: no auth, view counting on /watch only.
		publicRoutes := apiRoutes.Group("/assets")
		{
			publicRoutes.GET("/", ctrl.ListAssets)
			publicRoutes.GET("/:id/watch", ctrl.WatchAsset)
			publicRoutes.GET("/:id/preview", ctrl.PreviewAsset)
		}

		publicBlogRoutes := apiRoutes.Group("/blogs")
		{
			publicBlogRoutes.GET("/", ctrl.ListBlogs)
			publicBlogRoutes.GET("/:id", ctrl.GetBlog)
		}

		adminRoutes := apiRoutes.Group("/admin")
		{
			adminRoutes.Use(middles.AuthMiddleware)

			assetRoutes := adminRoutes.Group("/assets")
			{
				assetRoutes.POST("/", ctrl.UploadAsset)
				assetRoutes.POST("/external", ctrl.RegisterExternalVideo)
				assetRoutes.POST("/:id/refresh", ctrl.RefreshAssetURL)
				assetRoutes.PUT("/:id/pin", ctrl.UpdateAssetPinned)
				assetRoutes.DELETE("/:id", ctrl.DeleteAsset)
			}

			blogRoutes := adminRoutes.Group("/blogs")
			{
				blogRoutes.POST("/", ctrl.CreateBlog)
				blogRoutes.DELETE("/:id", ctrl.DeleteBlog)
			}
		}
	}
	return r
}

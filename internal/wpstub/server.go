package wpstub

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	sessionCookieName  = "wordpress_logged_in"
	sessionKeyUsername = "username"
	sessionKeyCart     = "cart"
	sessionSecret      = "wpstub-session-secret"
	cartItemSeparator  = ","

	routeFront         = "/"
	routePost          = "/post/:slug"
	routeCommentSubmit = "/wp-comments-post.php"
	routeShop          = "/shop"
	routeCart          = "/cart"
	routeDebugPage     = "/debug-page"
	routeLogin         = "/wp-login.php"
	routeAdminRoot     = "/wp-admin/"
	routePluginListing = "/wp-admin/plugins.php"
	routeRESTPosts     = "/wp-json/wp/v2/posts"
	routeRESTSettings  = "/wp-json/aurora/v1/settings"

	queryParamSearch     = "s"
	queryParamAddToCart  = "add-to-cart"
	queryParamRedirectTo = "redirect_to"
	queryParamAction     = "action"
	queryParamPlugin     = "plugin"
	formFieldUsername    = "log"
	formFieldPassword    = "pwd"
	formFieldAuthor      = "author"
	formFieldComment     = "comment"
	formFieldCommentPost = "comment_post_ID"

	pluginActionActivate   = "activate"
	pluginActionDeactivate = "deactivate"

	htmlContentType           = "text/html; charset=utf-8"
	incorrectPasswordFormat   = "The password you entered for the username %s is incorrect."
	leakedNoticeText          = "Notice: Undefined variable: aurora_sidebar in /var/www/wp-content/themes/aurora/sidebar.php on line 31"
	logEventStubLogin         = "stub_login"
	logEventStubPluginToggled = "stub_plugin_toggled"
	logFieldStubUsername      = "username"
	logFieldStubPluginSlug    = "slug"
	logFieldStubPluginAction  = "action"
)

type product struct {
	ID    string
	Name  string
	Price string
}

var shopProducts = []product{
	{ID: "aurora-tee", Name: "Aurora Tee", Price: "$24.00"},
	{ID: "enamel-mug", Name: "Enamel Mug", Price: "$14.00"},
	{ID: "print-poster", Name: "Print Poster", Price: "$18.00"},
}

// pageData feeds every template; handlers fill the fields their page renders.
type pageData struct {
	LoggedIn         bool
	Username         string
	CartCount        int
	SearchQuery      string
	Posts            []Post
	Post             Post
	Comments         []Comment
	Plugins          []Plugin
	Products         []product
	CartProducts     []product
	AddedProductName string
	LeakedNotice     string
	PostCount        int64
	ErrorMessage     string
	RedirectTo       string
}

// Server is the demo-site stand-in: a gin application over a sqlite
// content store with cookie-session authentication.
type Server struct {
	database           *gorm.DB
	sessionStore       *sessions.CookieStore
	adminUsername      string
	adminPassword      string
	silentLoginFailure bool
	router             *gin.Engine
	logger             *zap.Logger
}

// NewServer wires the stub's routes over the given database and admin
// credential pair.
func NewServer(database *gorm.DB, adminUsername string, adminPassword string, logger *zap.Logger) *Server {
	server := &Server{
		database:      database,
		sessionStore:  sessions.NewCookieStore([]byte(sessionSecret)),
		adminUsername: adminUsername,
		adminPassword: adminPassword,
		logger:        logger,
	}
	server.router = server.buildRouter()
	return server
}

// Router exposes the gin engine for httptest servers.
func (server *Server) Router() *gin.Engine {
	return server.router
}

// SilenceLoginFailures makes a rejected login re-render the form
// without the error box, mimicking hardened deployments that suppress
// login hints.
func (server *Server) SilenceLoginFailures() {
	server.silentLoginFailure = true
}

func (server *Server) buildRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET(routeFront, server.handleFront)
	router.GET(routePost, server.handlePost)
	router.POST(routeCommentSubmit, server.handleCreateComment)
	router.GET(routeShop, server.handleShop)
	router.GET(routeCart, server.handleCart)
	router.GET(routeDebugPage, server.handleDebugPage)
	router.GET(routeLogin, server.handleLoginForm)
	router.POST(routeLogin, server.handleLoginSubmit)
	router.GET(routeAdminRoot, server.handleAdminDashboard)
	router.GET(routePluginListing, server.handlePluginListing)

	restGroup := router.Group("/", cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{"Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	restGroup.GET(routeRESTPosts, server.handleRESTPosts)
	restGroup.GET(routeRESTSettings, server.handleRESTSettings)

	return router
}

func (server *Server) renderPage(ginContext *gin.Context, templateName string, data pageData) {
	var renderedPage bytes.Buffer
	if renderErr := pageTemplates.ExecuteTemplate(&renderedPage, templateName, data); renderErr != nil {
		ginContext.String(http.StatusInternalServerError, renderErr.Error())
		return
	}
	ginContext.Data(http.StatusOK, htmlContentType, renderedPage.Bytes())
}

func (server *Server) basePageData(ginContext *gin.Context) pageData {
	username, loggedIn := server.currentUsername(ginContext)
	return pageData{
		LoggedIn:  loggedIn,
		Username:  username,
		CartCount: len(server.cartItems(ginContext)),
	}
}

func (server *Server) currentUsername(ginContext *gin.Context) (string, bool) {
	browserSession, sessionErr := server.sessionStore.Get(ginContext.Request, sessionCookieName)
	if sessionErr != nil {
		return "", false
	}
	username, usernameOk := browserSession.Values[sessionKeyUsername].(string)
	if !usernameOk || username == "" {
		return "", false
	}
	return username, true
}

func (server *Server) cartItems(ginContext *gin.Context) []string {
	browserSession, sessionErr := server.sessionStore.Get(ginContext.Request, sessionCookieName)
	if sessionErr != nil {
		return nil
	}
	joinedItems, itemsOk := browserSession.Values[sessionKeyCart].(string)
	if !itemsOk || joinedItems == "" {
		return nil
	}
	return strings.Split(joinedItems, cartItemSeparator)
}

func (server *Server) handleFront(ginContext *gin.Context) {
	searchQuery := strings.TrimSpace(ginContext.Query(queryParamSearch))
	if ginContext.Request.URL.Query().Has(queryParamSearch) {
		server.handleSearch(ginContext, searchQuery)
		return
	}

	data := server.basePageData(ginContext)
	if queryErr := server.database.Order("created_at desc").Find(&data.Posts).Error; queryErr != nil {
		ginContext.String(http.StatusInternalServerError, queryErr.Error())
		return
	}
	server.renderPage(ginContext, "front", data)
}

func (server *Server) handleSearch(ginContext *gin.Context, searchQuery string) {
	data := server.basePageData(ginContext)
	data.SearchQuery = searchQuery

	if searchQuery != "" {
		likePattern := "%" + searchQuery + "%"
		if queryErr := server.database.Where("title LIKE ? OR content LIKE ?", likePattern, likePattern).Find(&data.Posts).Error; queryErr != nil {
			ginContext.String(http.StatusInternalServerError, queryErr.Error())
			return
		}
	}
	server.renderPage(ginContext, "search", data)
}

func (server *Server) handlePost(ginContext *gin.Context) {
	postSlug := ginContext.Param("slug")

	data := server.basePageData(ginContext)
	if queryErr := server.database.Where("slug = ?", postSlug).First(&data.Post).Error; queryErr != nil {
		ginContext.String(http.StatusNotFound, "Page not found")
		return
	}
	if queryErr := server.database.Where("post_id = ?", data.Post.ID).Order("created_at asc").Find(&data.Comments).Error; queryErr != nil {
		ginContext.String(http.StatusInternalServerError, queryErr.Error())
		return
	}
	server.renderPage(ginContext, "post", data)
}

func (server *Server) handleCreateComment(ginContext *gin.Context) {
	commentPostID := ginContext.PostForm(formFieldCommentPost)

	var commentedPost Post
	if queryErr := server.database.Where("id = ?", commentPostID).First(&commentedPost).Error; queryErr != nil {
		ginContext.String(http.StatusNotFound, "Page not found")
		return
	}

	newComment := Comment{
		ID:      NewID(),
		PostID:  commentedPost.ID,
		Author:  strings.TrimSpace(ginContext.PostForm(formFieldAuthor)),
		Content: strings.TrimSpace(ginContext.PostForm(formFieldComment)),
	}
	if newComment.Author == "" || newComment.Content == "" {
		ginContext.String(http.StatusBadRequest, "Please fill the required fields.")
		return
	}
	if insertErr := server.database.Create(&newComment).Error; insertErr != nil {
		ginContext.String(http.StatusInternalServerError, insertErr.Error())
		return
	}

	ginContext.Redirect(http.StatusFound, "/post/"+commentedPost.Slug)
}

func (server *Server) handleShop(ginContext *gin.Context) {
	data := server.basePageData(ginContext)
	data.Products = shopProducts

	addedProductID := ginContext.Query(queryParamAddToCart)
	if addedProductID != "" {
		for _, shopProduct := range shopProducts {
			if shopProduct.ID != addedProductID {
				continue
			}
			data.CartCount = server.appendCartItem(ginContext, shopProduct.ID)
			data.AddedProductName = shopProduct.Name
			break
		}
	}

	server.renderPage(ginContext, "shop", data)
}

func (server *Server) appendCartItem(ginContext *gin.Context, productID string) int {
	browserSession, sessionErr := server.sessionStore.Get(ginContext.Request, sessionCookieName)
	if sessionErr != nil {
		return 0
	}
	joinedItems, _ := browserSession.Values[sessionKeyCart].(string)
	if joinedItems == "" {
		joinedItems = productID
	} else {
		joinedItems = joinedItems + cartItemSeparator + productID
	}
	browserSession.Values[sessionKeyCart] = joinedItems
	_ = browserSession.Save(ginContext.Request, ginContext.Writer)
	return len(strings.Split(joinedItems, cartItemSeparator))
}

func (server *Server) handleCart(ginContext *gin.Context) {
	data := server.basePageData(ginContext)
	for _, cartItemID := range server.cartItems(ginContext) {
		for _, shopProduct := range shopProducts {
			if shopProduct.ID == cartItemID {
				data.CartProducts = append(data.CartProducts, shopProduct)
			}
		}
	}
	server.renderPage(ginContext, "cart", data)
}

func (server *Server) handleDebugPage(ginContext *gin.Context) {
	data := server.basePageData(ginContext)
	data.LeakedNotice = leakedNoticeText
	if queryErr := server.database.Order("created_at desc").Find(&data.Posts).Error; queryErr != nil {
		ginContext.String(http.StatusInternalServerError, queryErr.Error())
		return
	}
	server.renderPage(ginContext, "front", data)
}

func (server *Server) handleLoginForm(ginContext *gin.Context) {
	if _, loggedIn := server.currentUsername(ginContext); loggedIn {
		ginContext.Redirect(http.StatusFound, routeAdminRoot)
		return
	}

	data := server.basePageData(ginContext)
	data.RedirectTo = ginContext.Query(queryParamRedirectTo)
	server.renderPage(ginContext, "login", data)
}

func (server *Server) handleLoginSubmit(ginContext *gin.Context) {
	submittedUsername := ginContext.PostForm(formFieldUsername)
	submittedPassword := ginContext.PostForm(formFieldPassword)

	if submittedUsername != server.adminUsername || submittedPassword != server.adminPassword {
		data := server.basePageData(ginContext)
		if !server.silentLoginFailure {
			data.ErrorMessage = fmt.Sprintf(incorrectPasswordFormat, submittedUsername)
		}
		data.RedirectTo = ginContext.PostForm(queryParamRedirectTo)
		server.renderPage(ginContext, "login", data)
		return
	}

	browserSession, sessionErr := server.sessionStore.Get(ginContext.Request, sessionCookieName)
	if sessionErr != nil {
		ginContext.String(http.StatusInternalServerError, sessionErr.Error())
		return
	}
	browserSession.Values[sessionKeyUsername] = submittedUsername
	if saveErr := browserSession.Save(ginContext.Request, ginContext.Writer); saveErr != nil {
		ginContext.String(http.StatusInternalServerError, saveErr.Error())
		return
	}

	server.logger.Info(logEventStubLogin, zap.String(logFieldStubUsername, submittedUsername))

	redirectTarget := ginContext.PostForm(queryParamRedirectTo)
	if redirectTarget == "" {
		redirectTarget = routeAdminRoot
	}
	ginContext.Redirect(http.StatusFound, redirectTarget)
}

func (server *Server) handleAdminDashboard(ginContext *gin.Context) {
	username, loggedIn := server.currentUsername(ginContext)
	if !loggedIn {
		ginContext.Redirect(http.StatusFound, routeLogin+"?"+queryParamRedirectTo+"="+routeAdminRoot)
		return
	}

	data := server.basePageData(ginContext)
	data.Username = username
	if countErr := server.database.Model(&Post{}).Count(&data.PostCount).Error; countErr != nil {
		ginContext.String(http.StatusInternalServerError, countErr.Error())
		return
	}
	server.renderPage(ginContext, "admin", data)
}

func (server *Server) handlePluginListing(ginContext *gin.Context) {
	if _, loggedIn := server.currentUsername(ginContext); !loggedIn {
		ginContext.Redirect(http.StatusFound, routeLogin+"?"+queryParamRedirectTo+"="+routePluginListing)
		return
	}

	pluginAction := ginContext.Query(queryParamAction)
	pluginSlug := ginContext.Query(queryParamPlugin)
	if pluginAction != "" && pluginSlug != "" {
		if toggleErr := server.togglePlugin(pluginAction, pluginSlug); toggleErr != nil {
			ginContext.String(http.StatusInternalServerError, toggleErr.Error())
			return
		}
		ginContext.Redirect(http.StatusFound, routePluginListing)
		return
	}

	data := server.basePageData(ginContext)
	if queryErr := server.database.Order("name asc").Find(&data.Plugins).Error; queryErr != nil {
		ginContext.String(http.StatusInternalServerError, queryErr.Error())
		return
	}
	server.renderPage(ginContext, "plugins", data)
}

func (server *Server) togglePlugin(pluginAction string, pluginSlug string) error {
	switch pluginAction {
	case pluginActionActivate, pluginActionDeactivate:
	default:
		return nil
	}

	activeValue := pluginAction == pluginActionActivate
	if updateErr := server.database.Model(&Plugin{}).Where("slug = ?", pluginSlug).Update("active", activeValue).Error; updateErr != nil {
		return updateErr
	}

	server.logger.Info(logEventStubPluginToggled,
		zap.String(logFieldStubPluginSlug, pluginSlug),
		zap.String(logFieldStubPluginAction, pluginAction),
	)
	return nil
}

func (server *Server) handleRESTPosts(ginContext *gin.Context) {
	var storedPosts []Post
	if queryErr := server.database.Order("created_at desc").Find(&storedPosts).Error; queryErr != nil {
		ginContext.JSON(http.StatusInternalServerError, gin.H{"code": "internal_error"})
		return
	}

	restPosts := make([]gin.H, 0, len(storedPosts))
	for _, storedPost := range storedPosts {
		restPosts = append(restPosts, gin.H{
			"id":      storedPost.ID,
			"slug":    storedPost.Slug,
			"title":   gin.H{"rendered": storedPost.Title},
			"content": gin.H{"rendered": storedPost.Content},
		})
	}
	ginContext.JSON(http.StatusOK, restPosts)
}

func (server *Server) handleRESTSettings(ginContext *gin.Context) {
	ginContext.JSON(http.StatusOK, gin.H{
		"primary_color":   "#2563eb",
		"secondary_color": "#0b1526",
		"body_font":       "Inter",
		"heading_font":    "Sora",
		"container_width": 1200,
	})
}

package app

import (
	"errors"
	"fmt"
	nethttp "net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/allisson/roleguard/internal/access/domain"
	accessRepository "github.com/allisson/roleguard/internal/access/repository"
	accessService "github.com/allisson/roleguard/internal/access/service"
	"github.com/allisson/roleguard/internal/access/tokenstore"
	accessUseCase "github.com/allisson/roleguard/internal/access/usecase"
	"github.com/allisson/roleguard/internal/config"
	"github.com/allisson/roleguard/internal/identity"
)

// errSigningKeyMissing is returned when a component needs the local identity
// provider but no signing key is configured.
var errSigningKeyMissing = errors.New("identity signing key is not configured")

// accessComponents holds the lazily built access-control graph.
type accessComponents struct {
	subjectRepo  accessUseCase.SubjectRepository
	resourceRepo accessUseCase.ResourceRepository

	passwordService accessService.PasswordService
	codeService     accessService.CodeService
	classifier      accessService.ResourceClassifier
	decisionEngine  accessService.DecisionEngine

	codeStore        *identity.CodeStore
	localProvider    *identity.LocalProvider
	identityProvider accessUseCase.IdentityProvider

	serverResolver  accessUseCase.SubjectResolver
	subjectResolver accessUseCase.SubjectResolver
	subjectUseCase  accessUseCase.SubjectUseCase
	resourceUseCase accessUseCase.ResourceUseCase
	catalogSeeder   accessUseCase.CatalogSeeder
	catalog         *domain.Catalog

	tokenStore     *tokenstore.BlobTokenStore
	sessionManager accessUseCase.SessionManager

	subjectRepoInit      sync.Once
	resourceRepoInit     sync.Once
	passwordServiceInit  sync.Once
	codeServiceInit      sync.Once
	classifierInit       sync.Once
	decisionEngineInit   sync.Once
	codeStoreInit        sync.Once
	localProviderInit    sync.Once
	identityProviderInit sync.Once
	serverResolverInit   sync.Once
	subjectResolverInit  sync.Once
	subjectUseCaseInit   sync.Once
	resourceUseCaseInit  sync.Once
	catalogSeederInit    sync.Once
	catalogInit          sync.Once
	tokenStoreInit       sync.Once
	sessionManagerInit   sync.Once
}

// SubjectRepository returns the subject repository for the configured driver.
func (c *Container) SubjectRepository() (accessUseCase.SubjectRepository, error) {
	c.access.subjectRepoInit.Do(func() {
		repo, err := c.initSubjectRepository()
		c.store("subjectRepo", err)
		c.access.subjectRepo = repo
	})
	if err := c.stored("subjectRepo"); err != nil {
		return nil, err
	}
	return c.access.subjectRepo, nil
}

// ResourceRepository returns the resource repository for the configured driver.
func (c *Container) ResourceRepository() (accessUseCase.ResourceRepository, error) {
	c.access.resourceRepoInit.Do(func() {
		repo, err := c.initResourceRepository()
		c.store("resourceRepo", err)
		c.access.resourceRepo = repo
	})
	if err := c.stored("resourceRepo"); err != nil {
		return nil, err
	}
	return c.access.resourceRepo, nil
}

// PasswordService returns the Argon2id password service.
func (c *Container) PasswordService() accessService.PasswordService {
	c.access.passwordServiceInit.Do(func() {
		c.access.passwordService = accessService.NewPasswordService()
	})
	return c.access.passwordService
}

// CodeService returns the authorization code service.
func (c *Container) CodeService() accessService.CodeService {
	c.access.codeServiceInit.Do(func() {
		c.access.codeService = accessService.NewCodeService()
	})
	return c.access.codeService
}

// ResourceClassifier returns the resource classifier.
func (c *Container) ResourceClassifier() accessService.ResourceClassifier {
	c.access.classifierInit.Do(func() {
		c.access.classifier = accessService.NewResourceClassifier()
	})
	return c.access.classifier
}

// DecisionEngine returns the decision engine, counting decisions when metrics are enabled.
func (c *Container) DecisionEngine() (accessService.DecisionEngine, error) {
	c.access.decisionEngineInit.Do(func() {
		engine, err := c.initDecisionEngine()
		c.store("decisionEngine", err)
		c.access.decisionEngine = engine
	})
	if err := c.stored("decisionEngine"); err != nil {
		return nil, err
	}
	return c.access.decisionEngine, nil
}

// CodeStore returns the blob-backed store for pending authorization codes.
func (c *Container) CodeStore() (*identity.CodeStore, error) {
	c.access.codeStoreInit.Do(func() {
		store, err := c.initCodeStore()
		c.store("codeStore", err)
		c.access.codeStore = store
	})
	if err := c.stored("codeStore"); err != nil {
		return nil, err
	}
	return c.access.codeStore, nil
}

// LocalProvider returns the provider that issues codes and tokens for local subjects.
func (c *Container) LocalProvider() (*identity.LocalProvider, error) {
	c.access.localProviderInit.Do(func() {
		provider, err := c.initLocalProvider()
		c.store("localProvider", err)
		c.access.localProvider = provider
	})
	if err := c.stored("localProvider"); err != nil {
		return nil, err
	}
	return c.access.localProvider, nil
}

// IdentityProvider returns the remote provider when IDENTITY_REMOTE_URL is set,
// otherwise the local one.
func (c *Container) IdentityProvider() (accessUseCase.IdentityProvider, error) {
	c.access.identityProviderInit.Do(func() {
		provider, err := c.initIdentityProvider()
		c.store("identityProvider", err)
		c.access.identityProvider = provider
	})
	if err := c.stored("identityProvider"); err != nil {
		return nil, err
	}
	return c.access.identityProvider, nil
}

// ServerSubjectResolver returns the resolver used by the API. It always
// validates tokens with the local provider.
func (c *Container) ServerSubjectResolver() (accessUseCase.SubjectResolver, error) {
	c.access.serverResolverInit.Do(func() {
		resolver, err := c.initServerSubjectResolver()
		c.store("serverResolver", err)
		c.access.serverResolver = resolver
	})
	if err := c.stored("serverResolver"); err != nil {
		return nil, err
	}
	return c.access.serverResolver, nil
}

// SubjectResolver returns the resolver backing the CLI session.
func (c *Container) SubjectResolver() (accessUseCase.SubjectResolver, error) {
	c.access.subjectResolverInit.Do(func() {
		resolver, err := c.initSubjectResolver()
		c.store("subjectResolver", err)
		c.access.subjectResolver = resolver
	})
	if err := c.stored("subjectResolver"); err != nil {
		return nil, err
	}
	return c.access.subjectResolver, nil
}

// SubjectUseCase returns the subject directory use case.
func (c *Container) SubjectUseCase() (accessUseCase.SubjectUseCase, error) {
	c.access.subjectUseCaseInit.Do(func() {
		useCase, err := c.initSubjectUseCase()
		c.store("subjectUseCase", err)
		c.access.subjectUseCase = useCase
	})
	if err := c.stored("subjectUseCase"); err != nil {
		return nil, err
	}
	return c.access.subjectUseCase, nil
}

// ResourceUseCase returns the resource catalog use case.
func (c *Container) ResourceUseCase() (accessUseCase.ResourceUseCase, error) {
	c.access.resourceUseCaseInit.Do(func() {
		useCase, err := c.initResourceUseCase()
		c.store("resourceUseCase", err)
		c.access.resourceUseCase = useCase
	})
	if err := c.stored("resourceUseCase"); err != nil {
		return nil, err
	}
	return c.access.resourceUseCase, nil
}

// CatalogSeeder returns the seeder that loads catalogs through the use cases.
func (c *Container) CatalogSeeder() (accessUseCase.CatalogSeeder, error) {
	c.access.catalogSeederInit.Do(func() {
		seeder, err := c.initCatalogSeeder()
		c.store("catalogSeeder", err)
		c.access.catalogSeeder = seeder
	})
	if err := c.stored("catalogSeeder"); err != nil {
		return nil, err
	}
	return c.access.catalogSeeder, nil
}

// Catalog returns the seed catalog from CATALOG_PATH or the embedded default.
func (c *Container) Catalog() (*domain.Catalog, error) {
	c.access.catalogInit.Do(func() {
		catalog, err := accessRepository.LoadCatalog(c.config.CatalogPath)
		c.store("catalog", err)
		c.access.catalog = catalog
	})
	if err := c.stored("catalog"); err != nil {
		return nil, err
	}
	return c.access.catalog, nil
}

// TokenStore returns the store holding the CLI session token.
func (c *Container) TokenStore() (*tokenstore.BlobTokenStore, error) {
	c.access.tokenStoreInit.Do(func() {
		store, err := c.initTokenStore()
		c.store("tokenStore", err)
		c.access.tokenStore = store
	})
	if err := c.stored("tokenStore"); err != nil {
		return nil, err
	}
	return c.access.tokenStore, nil
}

// SessionManager returns the CLI session manager.
func (c *Container) SessionManager() (accessUseCase.SessionManager, error) {
	c.access.sessionManagerInit.Do(func() {
		manager, err := c.initSessionManager()
		c.store("sessionManager", err)
		c.access.sessionManager = manager
	})
	if err := c.stored("sessionManager"); err != nil {
		return nil, err
	}
	return c.access.sessionManager, nil
}

func (c *Container) initSubjectRepository() (accessUseCase.SubjectRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for subject repository: %w", err)
	}

	switch c.config.DBDriver {
	case config.DriverMemory:
		return accessRepository.NewMemorySubjectRepository(), nil
	case config.DriverPostgres:
		return accessRepository.NewPostgreSQLSubjectRepository(db), nil
	case config.DriverMySQL:
		return accessRepository.NewMySQLSubjectRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initResourceRepository() (accessUseCase.ResourceRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for resource repository: %w", err)
	}

	switch c.config.DBDriver {
	case config.DriverMemory:
		return accessRepository.NewMemoryResourceRepository(), nil
	case config.DriverPostgres:
		return accessRepository.NewPostgreSQLResourceRepository(db), nil
	case config.DriverMySQL:
		return accessRepository.NewMySQLResourceRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initDecisionEngine() (accessService.DecisionEngine, error) {
	engine := accessService.NewDecisionEngine()
	if !c.config.MetricsEnabled {
		return engine, nil
	}

	decisionMetrics, err := c.DecisionMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get decision metrics for decision engine: %w", err)
	}
	return accessService.NewDecisionEngineWithMetrics(engine, decisionMetrics), nil
}

func (c *Container) initLocalProvider() (*identity.LocalProvider, error) {
	if c.config.IdentitySigningKey == "" {
		return nil, errSigningKeyMissing
	}

	subjectRepo, err := c.SubjectRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get subject repository for local provider: %w", err)
	}

	codeStore, err := c.CodeStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get code store for local provider: %w", err)
	}

	return identity.NewLocalProvider(
		subjectRepo,
		c.PasswordService(),
		c.CodeService(),
		codeStore,
		identity.Config{
			Issuer:     c.config.IdentityIssuer,
			SigningKey: []byte(c.config.IdentitySigningKey),
			TokenTTL:   c.config.IdentityTokenTTL,
			CodeTTL:    c.config.IdentityCodeTTL,
		},
		c.Logger(),
	), nil
}

func (c *Container) initIdentityProvider() (accessUseCase.IdentityProvider, error) {
	if c.config.IdentityRemoteURL != "" {
		return identity.NewRemoteProvider(c.config.IdentityRemoteURL, nethttp.DefaultClient), nil
	}

	provider, err := c.LocalProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get local provider for identity provider: %w", err)
	}
	return provider, nil
}

func (c *Container) initServerSubjectResolver() (accessUseCase.SubjectResolver, error) {
	provider, err := c.LocalProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get local provider for subject resolver: %w", err)
	}
	return c.withResolverMetrics(accessUseCase.NewSubjectResolver(provider))
}

func (c *Container) initSubjectResolver() (accessUseCase.SubjectResolver, error) {
	provider, err := c.IdentityProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get identity provider for subject resolver: %w", err)
	}
	return c.withResolverMetrics(accessUseCase.NewSubjectResolver(provider))
}

func (c *Container) withResolverMetrics(
	resolver accessUseCase.SubjectResolver,
) (accessUseCase.SubjectResolver, error) {
	if !c.config.MetricsEnabled {
		return resolver, nil
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for subject resolver: %w", err)
	}
	return accessUseCase.NewSubjectResolverWithMetrics(resolver, businessMetrics), nil
}

func (c *Container) initSubjectUseCase() (accessUseCase.SubjectUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for subject use case: %w", err)
	}

	subjectRepo, err := c.SubjectRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get subject repository for subject use case: %w", err)
	}

	// The API resolver only exists when this process issues tokens.
	var invalidators []accessUseCase.CacheInvalidator
	if c.config.IdentitySigningKey != "" {
		resolver, err := c.ServerSubjectResolver()
		if err != nil {
			return nil, fmt.Errorf("failed to get subject resolver for subject use case: %w", err)
		}
		invalidators = append(invalidators, resolver)
	}

	useCase := accessUseCase.NewSubjectUseCase(
		txManager,
		subjectRepo,
		c.PasswordService(),
		c.Logger(),
		invalidators...,
	)

	if !c.config.MetricsEnabled {
		return useCase, nil
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for subject use case: %w", err)
	}
	return accessUseCase.NewSubjectUseCaseWithMetrics(useCase, businessMetrics), nil
}

func (c *Container) initResourceUseCase() (accessUseCase.ResourceUseCase, error) {
	resourceRepo, err := c.ResourceRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get resource repository for resource use case: %w", err)
	}

	engine, err := c.DecisionEngine()
	if err != nil {
		return nil, fmt.Errorf("failed to get decision engine for resource use case: %w", err)
	}

	useCase := accessUseCase.NewResourceUseCase(resourceRepo, c.ResourceClassifier(), engine, c.Logger())

	if !c.config.MetricsEnabled {
		return useCase, nil
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for resource use case: %w", err)
	}
	return accessUseCase.NewResourceUseCaseWithMetrics(useCase, businessMetrics), nil
}

func (c *Container) initCatalogSeeder() (accessUseCase.CatalogSeeder, error) {
	subjects, err := c.SubjectUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get subject use case for catalog seeder: %w", err)
	}

	resources, err := c.ResourceUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get resource use case for catalog seeder: %w", err)
	}

	return accessUseCase.NewCatalogSeeder(subjects, resources, c.Logger()), nil
}

func (c *Container) initCodeStore() (*identity.CodeStore, error) {
	bucketURL, err := bucketURLOrDefault(c.config.IdentityCodeStoreURL, config.DefaultCodeStoreDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve code store: %w", err)
	}
	return identity.OpenCodeStore(c.ctx, bucketURL)
}

func (c *Container) initTokenStore() (*tokenstore.BlobTokenStore, error) {
	bucketURL, err := bucketURLOrDefault(c.config.TokenStoreURL, config.DefaultTokenStoreDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve token store: %w", err)
	}
	return tokenstore.Open(c.ctx, bucketURL, c.config.TokenStoreKeeperURI)
}

// bucketURLOrDefault returns bucketURL, or a file:// URL for the directory
// defaultDir names, created with owner-only permissions.
func bucketURLOrDefault(bucketURL string, defaultDir func() (string, error)) (string, error) {
	if bucketURL != "" {
		return bucketURL, nil
	}
	dir, err := defaultDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return "file://" + filepath.ToSlash(dir), nil
}

func (c *Container) initSessionManager() (accessUseCase.SessionManager, error) {
	resolver, err := c.SubjectResolver()
	if err != nil {
		return nil, fmt.Errorf("failed to get subject resolver for session manager: %w", err)
	}

	store, err := c.TokenStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get token store for session manager: %w", err)
	}

	return accessUseCase.NewSessionManager(resolver, store, c.Logger()), nil
}

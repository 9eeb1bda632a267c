// internal/engine/finding.go
package engine

import "fmt"

// Severity splits findings into blocking and cautionary classes.
type Severity string

const (
	SeverityBlocker Severity = "CRITICO"
	SeverityWarning Severity = "ATENCION"
)

// Category is the display category of a finding, one per dimension.
type Category string

const (
	CatEstrategia Category = "Estrategia"
	CatDatos      Category = "Datos"
	CatTecnologia Category = "Tecnologia"
	CatPersonas   Category = "Personas"
	CatValor      Category = "Valor"
	CatRiesgos    Category = "Riesgos"
)

// FindingCode identifies a rule outcome independently of its rendered
// text. Impact and remediation copy is looked up by code, never by
// substring-matching the localized prose.
type FindingCode string

const (
	CodeStrategyNotDefined     FindingCode = "STRATEGY_NOT_DEFINED"
	CodeNoExecutiveSponsor     FindingCode = "NO_EXECUTIVE_SPONSOR"
	CodeMaturityBelowRequired  FindingCode = "MATURITY_BELOW_REQUIRED"
	CodeNoDataGovernance       FindingCode = "NO_DATA_GOVERNANCE"
	CodeLowDataQuality         FindingCode = "LOW_DATA_QUALITY"
	CodeNoCloudInfrastructure  FindingCode = "NO_CLOUD_AI_INFRASTRUCTURE"
	CodeNoMLOpsPlatform        FindingCode = "NO_MLOPS_PLATFORM"
	CodeLowAITalent            FindingCode = "LOW_AI_TALENT"
	CodeNoTrainingPlan         FindingCode = "NO_TRAINING_PLAN"
	CodeLowROICertainty        FindingCode = "LOW_ROI_CERTAINTY"
	CodeLowUseCaseScore        FindingCode = "LOW_USECASE_SCORE"
	CodeLowComplianceReadiness FindingCode = "LOW_COMPLIANCE_READINESS"
	CodeSensitiveDataUse       FindingCode = "SENSITIVE_DATA_USE"
)

// Finding is one rule outcome for a use case. Text keeps the verbatim
// "[CRITICO - Categoria] ..." format the report generators and the
// activity generator render; Code is what they should key lookups on.
type Finding struct {
	Code     FindingCode `json:"code"`
	Category Category    `json:"category"`
	Severity Severity    `json:"severity"`
	Text     string      `json:"text"`
}

// renderText builds the user-visible finding string. The bracketed
// severity/category prefix is a cross-system contract; changing its
// shape breaks the report and activity consumers.
func renderText(sev Severity, cat Category, msg string) string {
	return fmt.Sprintf("[%s - %s] %s", sev, cat, msg)
}

// ActivityPrefix is the task-title prefix the activity generator puts
// in front of each finding-derived task.
func ActivityPrefix(sev Severity) string {
	if sev == SeverityBlocker {
		return "[CRÍTICO]"
	}
	return "[ATENCIÓN]"
}

// impactByCode explains what each finding means for the organization.
// Consumed by the report surface; looked up strictly by code.
var impactByCode = map[FindingCode]string{
	CodeStrategyNotDefined:     "Sin una estrategia de IA alineada al negocio, los proyectos compiten por recursos sin criterio y rara vez pasan del piloto.",
	CodeNoExecutiveSponsor:     "La falta de patrocinio ejecutivo reduce el presupuesto disponible y la capacidad de remover obstaculos organizacionales.",
	CodeMaturityBelowRequired:  "Implementar con una madurez muy inferior a la requerida multiplica el riesgo de fracaso y el costo de correccion.",
	CodeNoDataGovernance:       "Sin gobierno de datos no hay trazabilidad ni responsables claros, y cualquier modelo heredara problemas de calidad y cumplimiento.",
	CodeLowDataQuality:         "Modelos entrenados sobre datos incompletos o inconsistentes producen resultados poco fiables que erosionan la confianza del negocio.",
	CodeNoCloudInfrastructure:  "Sin infraestructura cloud preparada para IA, el entrenamiento y despliegue de modelos queda limitado a entornos no escalables.",
	CodeNoMLOpsPlatform:        "Sin plataforma MLOps los modelos se degradan en produccion sin deteccion y cada despliegue es un esfuerzo manual y fragil.",
	CodeLowAITalent:            "El deficit de talento interno obliga a depender de terceros y ralentiza la iteracion sobre los modelos.",
	CodeNoTrainingPlan:         "Sin formacion, los equipos de negocio no adoptan las herramientas y el valor del caso de uso no se materializa.",
	CodeLowROICertainty:        "Un ROI incierto dificulta justificar la inversion y sostener el proyecto cuando aparecen los primeros obstaculos.",
	CodeLowUseCaseScore:        "Una evaluacion baja del caso de uso indica dudas de los propios responsables sobre su viabilidad o valor.",
	CodeLowComplianceReadiness: "Una preparacion regulatoria debil expone a la organizacion a sanciones y a la paralizacion del proyecto.",
	CodeSensitiveDataUse:       "Procesar datos sensibles sin controles definidos puede derivar en incidentes de privacidad con impacto legal y reputacional.",
}

// remediationByCode is the per-finding remediation guidance, distinct
// from the generic status-level recommendations the composer emits.
var remediationByCode = map[FindingCode]string{
	CodeStrategyNotDefined:     "Definir una estrategia de IA con objetivos medibles y revisarla con la direccion cada trimestre.",
	CodeNoExecutiveSponsor:     "Designar un sponsor ejecutivo con presupuesto propio y reportes mensuales de avance.",
	CodeMaturityBelowRequired:  "Cerrar primero las brechas de madurez de mayor peso antes de comprometer fechas de implementacion.",
	CodeNoDataGovernance:       "Establecer un marco de gobierno de datos con propietarios, catalogos y politicas de acceso.",
	CodeLowDataQuality:         "Auditar las fuentes de datos del caso de uso y fijar umbrales minimos de calidad antes de entrenar.",
	CodeNoCloudInfrastructure:  "Habilitar un entorno cloud con capacidad de computo para IA, empezando por las cargas del piloto.",
	CodeNoMLOpsPlatform:        "Adoptar una plataforma MLOps que cubra versionado, despliegue y monitorizacion de modelos.",
	CodeLowAITalent:            "Contratar o formar talento en ciencia de datos y emparejarlo con los expertos del dominio.",
	CodeNoTrainingPlan:         "Lanzar un plan de formacion en IA por rol, comenzando por los equipos que operaran el caso de uso.",
	CodeLowROICertainty:        "Acotar el caso de negocio con una prueba de concepto que mida el ROI sobre datos reales.",
	CodeLowUseCaseScore:        "Revisar con los responsables las respuestas de la evaluacion y redefinir el alcance del caso de uso.",
	CodeLowComplianceReadiness: "Involucrar a legal y cumplimiento desde el diseno y mapear la normativa aplicable al caso de uso.",
	CodeSensitiveDataUse:       "Aplicar minimizacion, anonimizacion y una evaluacion de impacto de privacidad antes de usar los datos.",
}

// ImpactText returns the impact explanation for a finding code, empty
// when the code is unknown.
func ImpactText(code FindingCode) string {
	return impactByCode[code]
}

// RemediationText returns the remediation guidance for a finding code.
func RemediationText(code FindingCode) string {
	return remediationByCode[code]
}

package extract

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxhq/codegraph/core"
)

func TestKotlinSuspendFunction(t *testing.T) {
	src := `suspend fun loadData(): List<String> { delay(1000); return listOf("a", "b", "c") }`
	res := extractSrc(t, "Load.kt", src)

	fn := requireNode(t, res, core.KindFunction, "loadData")
	require.True(t, fn.IsAsync)

	requireRef(t, res, core.EdgeCalls, "delay")
	requireRef(t, res, core.EdgeCalls, "listOf")
}

func TestKotlinSealedHierarchy(t *testing.T) {
	src := `sealed class Result { data class Success(val value: String) : Result(); data class Error(val message: String) : Result(); object Loading : Result() }`
	res := extractSrc(t, "Result.kt", src)

	requireNode(t, res, core.KindClass, "Result")
	requireNode(t, res, core.KindClass, "Success")
	requireNode(t, res, core.KindClass, "Error")
	requireNode(t, res, core.KindClass, "Loading")

	extends := 0
	for _, r := range res.UnresolvedRefs {
		if r.Kind == core.EdgeExtends && r.Name == "Result" {
			extends++
		}
	}
	require.Equal(t, 3, extends, "each subclass extends Result")
}

func TestKotlinClassRouting(t *testing.T) {
	src := `interface Clock {
    fun now(): Long
}

enum class Color { RED, GREEN }

class Wall : Clock {
    override fun now(): Long = 0
}

object Registry {
    fun lookup(name: String): Clock? = null
}`
	res := extractSrc(t, "Clock.kt", src)

	requireNode(t, res, core.KindInterface, "Clock")

	en := requireNode(t, res, core.KindEnum, "Color")
	requireNode(t, res, core.KindEnumMember, "RED")
	requireNode(t, res, core.KindEnumMember, "GREEN")
	require.NotNil(t, en)

	requireNode(t, res, core.KindClass, "Wall")
	// A bare user type in the delegation list is a conformance.
	requireRef(t, res, core.EdgeImplements, "Clock")

	requireNode(t, res, core.KindClass, "Registry")
	requireNode(t, res, core.KindMethod, "lookup")
}

func TestKotlinCompanionObject(t *testing.T) {
	src := `class Parser {
    companion object {
        fun default(): Parser = Parser()
    }
}`
	res := extractSrc(t, "Parser.kt", src)

	comp := requireNode(t, res, core.KindClass, "Companion")
	require.True(t, comp.IsStatic)
	require.Equal(t, "Parser.kt::Parser::Companion", comp.QualifiedName)
}

func TestKotlinPropertiesAndConstants(t *testing.T) {
	src := `const val MAX_RETRIES = 3

class Session {
    private val token: String = ""
    var active: Boolean = false
}`
	res := extractSrc(t, "Session.kt", src)

	requireNode(t, res, core.KindConstant, "MAX_RETRIES")

	token := requireNode(t, res, core.KindProperty, "token")
	require.Equal(t, core.VisibilityPrivate, token.Visibility)

	active := requireNode(t, res, core.KindProperty, "active")
	require.Equal(t, core.VisibilityPublic, active.Visibility)
}

func TestKotlinTypeAliasAndImports(t *testing.T) {
	src := `import kotlinx.coroutines.delay

typealias Callback = (Int) -> Unit
`
	res := extractSrc(t, "Alias.kt", src)

	requireNode(t, res, core.KindTypeAlias, "Callback")
	requireRef(t, res, core.EdgeImports, "kotlinx.coroutines.delay")
}

func TestKotlinAbstractClass(t *testing.T) {
	src := `abstract class Shape {
    abstract fun area(): Double
}`
	res := extractSrc(t, "Shape.kt", src)

	cls := requireNode(t, res, core.KindClass, "Shape")
	require.True(t, cls.IsAbstract)

	area := requireNode(t, res, core.KindMethod, "area")
	require.True(t, area.IsAbstract)
}

package codegen

// Support functions the C-family prologues emit when a program needs them.
// Each one is written only once per program and only when used.

// emitFloorMod writes floor_mod, which gives % the sign of the divisor.
func emitFloorMod(e *Emitter) {
	e.Line("static int floor_mod(int a, int b) {")
	e.Indent()
	e.Line("int r = a % b;")
	e.Line("return r != 0 && (r < 0) != (b < 0) ? r + b : r;")
	e.Dedent()
	e.Line("}")
	e.Blank()
}

// emitFloatFormatter writes format_float. It prints the fewest significant
// digits that read back as the same double, in fixed notation for decimal
// exponents from -4 to 15 and in exponent notation otherwise. Integral
// values keep a ".0" suffix.
//
// header opens the function and bufDecl declares the 40-byte buffer buf.
func emitFloatFormatter(e *Emitter, header, bufDecl string) {
	e.Line(header)
	e.Indent()
	e.Line(bufDecl)
	e.Line("int digits, exp;")
	e.Line("if (x != x) {")
	e.Indent()
	e.Line(`return "nan";`)
	e.Dedent()
	e.Line("}")
	e.Line("if (x - x != 0) {")
	e.Indent()
	e.Line(`return x > 0 ? "inf" : "-inf";`)
	e.Dedent()
	e.Line("}")
	e.Line("for (digits = 1; digits < 17; digits++) {")
	e.Indent()
	e.Line(`snprintf(buf, sizeof buf, "%.*e", digits - 1, x);`)
	e.Line("if (strtod(buf, NULL) == x) {")
	e.Indent()
	e.Line("break;")
	e.Dedent()
	e.Line("}")
	e.Dedent()
	e.Line("}")
	e.Line(`snprintf(buf, sizeof buf, "%.*e", digits - 1, x);`)
	e.Line("exp = atoi(strchr(buf, 'e') + 1);")
	e.Line("if (exp >= -4 && exp < 16) {")
	e.Indent()
	e.Line(`snprintf(buf, sizeof buf, "%.*f", digits - 1 > exp ? digits - 1 - exp : 0, x);`)
	e.Line("if (strchr(buf, '.') == NULL) {")
	e.Indent()
	e.Line(`strcat(buf, ".0");`)
	e.Dedent()
	e.Line("}")
	e.Dedent()
	e.Line("}")
	e.Line("return buf;")
	e.Dedent()
	e.Line("}")
	e.Blank()
}

// emitJavaFloatFormatter writes Main.formatFloat with the same output as
// format_float.
func emitJavaFloatFormatter(e *Emitter) {
	e.Line("static String formatFloat(double x) {")
	e.Indent()
	e.Line("if (Double.isNaN(x)) {")
	e.Indent()
	e.Line(`return "nan";`)
	e.Dedent()
	e.Line("}")
	e.Line("if (Double.isInfinite(x)) {")
	e.Indent()
	e.Line(`return x > 0 ? "inf" : "-inf";`)
	e.Dedent()
	e.Line("}")
	e.Line("if (x == 0) {")
	e.Indent()
	e.Line(`return 1 / x < 0 ? "-0.0" : "0.0";`)
	e.Dedent()
	e.Line("}")
	e.Line(`String s = "";`)
	e.Line("for (int digits = 1; digits <= 17; digits++) {")
	e.Indent()
	e.Line(`s = String.format(java.util.Locale.ROOT, "%." + (digits - 1) + "e", x);`)
	e.Line("if (Double.parseDouble(s) == x) {")
	e.Indent()
	e.Line("break;")
	e.Dedent()
	e.Line("}")
	e.Dedent()
	e.Line("}")
	e.Line("int exp = Integer.parseInt(s.substring(s.indexOf('e') + 1));")
	e.Line("if (exp < -4 || exp >= 16) {")
	e.Indent()
	e.Line("return s;")
	e.Dedent()
	e.Line("}")
	e.Line("s = new java.math.BigDecimal(s).toPlainString();")
	e.Line(`return s.indexOf('.') < 0 ? s + ".0" : s;`)
	e.Dedent()
	e.Line("}")
	e.Blank()
}

package category

// InvestmentCategory is the expense category fed by the automatic salary
// companion. Monthly expense totals report it as a separate subtotal.
const InvestmentCategory = "Investimento"

// SalaryCategory is where salary-indicative descriptions land on the
// income side.
const SalaryCategory = "Salário"

// DefaultExpenseRules is the built-in expense taxonomy. Investment comes
// first so that descriptions mixing an investment keyword with another
// category's keyword ("aporte no dia do almoço") classify as investment.
func DefaultExpenseRules() []Rule {
	return []Rule{
		{Category: InvestmentCategory, Keywords: []string{"investimento", "aporte", "ações", "acoes", "fii", "aplicar", "tesouro"}},
		{Category: "Transporte", Keywords: []string{"uber", "99", "taxi", "táxi", "ônibus", "onibus", "metro", "metrô", "gasolina", "combustível", "combustivel"}},
		{Category: "Alimentação", Keywords: []string{"lanche", "pizza", "ifood", "hamburguer", "almoço", "almoco", "jantar", "restaurante", "padaria"}},
		{Category: "Mercado", Keywords: []string{"mercado", "supermercado", "feira", "açougue", "acougue"}},
		{Category: "Moradia", Keywords: []string{"aluguel", "condomínio", "condominio", "iptu"}},
		{Category: "Contas", Keywords: []string{"luz", "água", "agua", "internet", "energia", "telefone", "celular"}},
		{Category: "Saúde", Keywords: []string{"farmácia", "farmacia", "remédio", "remedio", "médico", "medico", "consulta", "dentista"}},
		{Category: "Educação", Keywords: []string{"curso", "faculdade", "livro", "escola"}},
		{Category: "Lazer", Keywords: []string{"cinema", "show", "bar", "viagem", "jogo"}},
		{Category: "Assinaturas", Keywords: []string{"netflix", "spotify", "assinatura", "streaming"}},
		{Category: "Roupas", Keywords: []string{"roupa", "tênis", "tenis", "sapato", "camisa"}},
	}
}

// DefaultIncomeRules is the built-in income taxonomy. Salary keywords must
// stay here: salary entries resolve to SalaryCategory through these rules,
// not through a hardcoded branch.
func DefaultIncomeRules() []Rule {
	return []Rule{
		{Category: SalaryCategory, Keywords: []string{"salário", "salario", "pagamento", "contracheque", "holerite"}},
		{Category: "Renda Extra", Keywords: []string{"freela", "freelancer", "bico", "venda", "comissão", "comissao"}},
		{Category: "Rendimentos", Keywords: []string{"dividendo", "juros", "rendimento", "cashback"}},
	}
}

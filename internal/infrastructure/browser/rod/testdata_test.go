package rod

const (
	BasicHTML = `<!DOCTYPE html>
<html>
<head><title>Test Page</title></head>
<body>
	<h1>Hello World</h1>
</body>
</html>`

	ApplyFormHTML = `<!DOCTYPE html>
<html>
<body>
	<div class="jobs-easy-apply-content" style="height: 200px; overflow: auto;">
		<label for="email">Email address</label>
		<input id="email" type="text" />
		<label for="ctc">Expected CTC</label>
		<input id="ctc" type="text" value="12" />
		<fieldset>
			<legend>Are you willing to relocate?</legend>
			<input id="r-yes" type="radio" name="reloc" /><label for="r-yes">Yes</label>
			<input id="r-no" type="radio" name="reloc" /><label for="r-no">No</label>
		</fieldset>
		<label for="lang">English proficiency</label>
		<select id="lang">
			<option>Select an option</option>
			<option>Native or bilingual proficiency</option>
			<option>  Professional working proficiency  </option>
		</select>
		<input type="file" id="resume" style="display: none" />
		<div style="height: 2000px"></div>
		<button aria-label="Continue to next step">Next</button>
		<button style="display: none">Hidden Next</button>
	</div>
</body>
</html>`

	InteractiveHTML = `<!DOCTYPE html>
<html>
<body>
	<button id="btn">Click Me</button>
	<div id="result"></div>
	<script>
		document.getElementById('btn').addEventListener('click', function() {
			document.getElementById('result').textContent = 'Clicked!';
		});
	</script>
</body>
</html>`
)
